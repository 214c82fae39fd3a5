package cli

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"bookstore/internal/catalog"
	"bookstore/internal/domain"
	applog "bookstore/internal/log"
	"bookstore/internal/pricing"
	"bookstore/internal/services"
	"bookstore/internal/store"
	"bookstore/internal/validate"
)

// sessionOut is the persisted part of a session plus its totals.
type sessionOut struct {
	Cart          []domain.CartLine `json:"cart"`
	Wishlist      []domain.Product  `json:"wishlist"`
	User          *domain.User      `json:"user"`
	CartCount     int               `json:"cartCount"`
	WishlistCount int               `json:"wishlistCount"`
	Totals        pricing.View      `json:"totals"`
}

func sessionOf(st store.State) sessionOut {
	return sessionOut{
		Cart:          st.Cart,
		Wishlist:      st.Wishlist,
		User:          st.User,
		CartCount:     store.CartItemCount(st),
		WishlistCount: store.WishlistCount(st),
		Totals:        pricing.Compute(st.Cart).View(),
	}
}

// dispatch applies in to the CLI session and prints the result.
func (a *app) dispatch(cmd *cobra.Command, in store.Intent) error {
	s, err := a.env.store(cmd.Context())
	if err != nil {
		return err
	}
	st := s.Dispatch(cmd.Context(), in)
	applog.Audit(nil, "cli."+store.Name(in), map[string]any{"session": a.env.cfg.Session})
	return printJSON(cmd.OutOrStdout(), sessionOf(st))
}

func (a *app) product(id string) (domain.Product, error) {
	pid, ok := validate.ID(id)
	if !ok {
		return domain.Product{}, fmt.Errorf("invalid product id %q", id)
	}
	p, err := a.env.catalog.GetProduct(pid)
	if errors.Is(err, services.ErrUnknownProduct) {
		return domain.Product{}, fmt.Errorf("%w: %s", err, pid)
	}
	return p, err
}

func (a *app) stateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Print the session's cart, wishlist and user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.env.store(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), sessionOf(s.State()))
		},
	}
}

func (a *app) productsCmd() *cobra.Command {
	var (
		search, sortBy, output string
		cats                   []string
		minPrice, maxPrice     float64
		rating                 float64
		onSale, all            bool
	)
	cmd := &cobra.Command{
		Use:   "products",
		Short: "List the catalog through search, filters and sort",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.env.store(cmd.Context())
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			flags := cmd.Flags()

			if flags.Changed("search") {
				term, ok := validate.Search(search)
				if !ok {
					return errors.New("invalid search term")
				}
				s.Dispatch(ctx, store.SetSearchTerm{Term: term})
			}

			var patch store.FilterPatch
			if flags.Changed("category") {
				list := make([]domain.Category, 0, len(cats))
				for _, c := range cats {
					cat, ok := validate.Category(c)
					if !ok {
						return fmt.Errorf("unknown category %q", c)
					}
					list = append(list, cat)
				}
				patch.Category = &list
			}
			if flags.Changed("min-price") || flags.Changed("max-price") {
				r := s.State().Filters.PriceRange
				if flags.Changed("min-price") {
					r[0] = minPrice
				}
				if flags.Changed("max-price") {
					r[1] = maxPrice
				}
				if !validate.PriceRange(r) {
					return errors.New("price bounds must not be negative")
				}
				patch.PriceRange = &r
			}
			if flags.Changed("rating") {
				if !validate.Rating(rating) {
					return errors.New("rating must be between 0 and 5")
				}
				patch.Rating = &rating
			}
			if flags.Changed("on-sale") {
				patch.OnSale = &onSale
			}
			if flags.Changed("all") {
				inStock := !all
				patch.InStock = &inStock
			}
			if !patch.Empty() {
				s.Dispatch(ctx, store.SetFilters{Patch: patch})
			}

			if flags.Changed("sort") {
				key, ok := validate.SortKey(sortBy)
				if !ok {
					return fmt.Errorf("unknown sort key %q", sortBy)
				}
				s.Dispatch(ctx, store.SetSortBy{Key: key})
			}

			st := s.State()
			out := catalog.Visible(st.Products, st.SearchTerm, st.Filters, st.SortBy)
			if output == "json" {
				return printJSON(cmd.OutOrStdout(), out)
			}
			w := cmd.OutOrStdout()
			for _, p := range out {
				fmt.Fprintf(w, "%s | %s | %s | %.2f | %.1f | %s\n",
					p.ID, p.Title, p.Category, p.Price, p.Rating, catalog.StockStatus(p.Stock))
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&search, "search", "", "search title, author, category")
	f.StringSliceVar(&cats, "category", nil, "category (book|comic|manga), repeatable")
	f.Float64Var(&minPrice, "min-price", 0, "min price")
	f.Float64Var(&maxPrice, "max-price", 100, "max price")
	f.Float64Var(&rating, "rating", 0, "minimum rating")
	f.BoolVar(&onSale, "on-sale", false, "only products on sale")
	f.BoolVar(&all, "all", false, "include out-of-stock products")
	f.StringVar(&sortBy, "sort", "popular", "price-asc|price-desc|rating|newest|popular")
	f.StringVar(&output, "output", "", "output format (json)")
	return cmd
}

func (a *app) cartCmd() *cobra.Command {
	cart := &cobra.Command{
		Use:   "cart",
		Short: "Show or change the session's cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.env.store(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), services.ViewOf(s.State()))
		},
	}
	cart.AddCommand(
		&cobra.Command{
			Use:   "add <product-id>",
			Short: "Add one unit of a product",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				p, err := a.product(args[0])
				if err != nil {
					return err
				}
				return a.dispatch(cmd, store.AddToCart{Product: p})
			},
		},
		&cobra.Command{
			Use:   "set <product-id> <quantity>",
			Short: "Set a line's quantity; 0 removes it",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				pid, ok := validate.ID(args[0])
				if !ok {
					return fmt.Errorf("invalid product id %q", args[0])
				}
				qty, ok := validate.Qty(args[1])
				if !ok {
					return fmt.Errorf("invalid quantity %q", args[1])
				}
				return a.dispatch(cmd, store.UpdateCartQuantity{ID: pid, Quantity: qty})
			},
		},
		&cobra.Command{
			Use:   "remove <product-id>",
			Short: "Remove a line",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				pid, ok := validate.ID(args[0])
				if !ok {
					return fmt.Errorf("invalid product id %q", args[0])
				}
				return a.dispatch(cmd, store.RemoveFromCart{ID: pid})
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Empty the cart",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.dispatch(cmd, store.ClearCart{})
			},
		},
	)
	return cart
}

func (a *app) wishlistCmd() *cobra.Command {
	wish := &cobra.Command{
		Use:   "wishlist",
		Short: "Show or change the session's wishlist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.env.store(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), s.State().Wishlist)
		},
	}
	wish.AddCommand(
		&cobra.Command{
			Use:   "add <product-id>",
			Short: "Save a product",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				p, err := a.product(args[0])
				if err != nil {
					return err
				}
				return a.dispatch(cmd, store.AddToWishlist{Product: p})
			},
		},
		&cobra.Command{
			Use:   "remove <product-id>",
			Short: "Unsave a product",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				pid, ok := validate.ID(args[0])
				if !ok {
					return fmt.Errorf("invalid product id %q", args[0])
				}
				return a.dispatch(cmd, store.RemoveFromWishlist{ID: pid})
			},
		},
	)
	return wish
}

func (a *app) loginCmd() *cobra.Command {
	var id, name, email, avatar string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Record the session's user (no authentication)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if id == "" {
				id = uuid.NewString()
			}
			uid, ok := validate.ID(id)
			if !ok {
				return fmt.Errorf("invalid user id %q", id)
			}
			n, ok := validate.Name(name)
			if !ok {
				return errors.New("name required (max 40 characters)")
			}
			em, ok := validate.Email(email)
			if !ok {
				return errors.New("valid email required")
			}
			return a.dispatch(cmd, store.SetUser{User: &domain.User{ID: uid, Name: n, Email: em, Avatar: avatar}})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "user id (generated when empty)")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email")
	cmd.Flags().StringVar(&avatar, "avatar", "", "avatar URL")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the session's user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.dispatch(cmd, store.SetUser{User: nil})
		},
	}
}
