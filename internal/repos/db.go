package repos

import (
	"log"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// One connection keeps ":memory:" databases shared between the request
	// path and the background persistence writer.
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	// Seed the sample catalog (idempotent; safe to run every start)
	if err := seedCatalog(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
-- Catalog
CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  author TEXT NOT NULL,
  category TEXT NOT NULL CHECK (category IN ('book','comic','manga')),
  subcategory TEXT NOT NULL DEFAULT '',
  price NUMERIC NOT NULL CHECK (price >= 0),
  original_price NUMERIC NULL,
  image TEXT NOT NULL DEFAULT '',
  images_json TEXT,
  description TEXT,
  rating REAL NOT NULL DEFAULT 0 CHECK (rating >= 0 AND rating <= 5),
  review_count INTEGER NOT NULL DEFAULT 0 CHECK (review_count >= 0),
  stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
  isbn TEXT,
  pages INTEGER,
  publisher TEXT NOT NULL DEFAULT '',
  language TEXT NOT NULL DEFAULT '',
  is_new INTEGER NOT NULL DEFAULT 0,
  is_bestseller INTEGER NOT NULL DEFAULT 0,
  is_on_sale INTEGER NOT NULL DEFAULT 0,
  active INTEGER NOT NULL DEFAULT 1,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_products_category ON products(category);

-- Persisted client slices (cart, wishlist, user), one row per key
CREATE TABLE IF NOT EXISTS kv(
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at TEXT
);
`
	_, err := db.Exec(schema)
	return err
}

// seedCatalog inserts the sample books, comics and manga that are missing.
func seedCatalog(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM products`); err != nil {
		return err
	}
	if n == 0 {
		log.Println("[seed] inserting sample catalog")
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
	INSERT INTO products(id,title,author,category,subcategory,price,original_price,image,images_json,description,
	  rating,review_count,stock,isbn,pages,publisher,language,is_new,is_bestseller,is_on_sale)
	VALUES
	  ('book-001','The Shadow of the Wind','Carlos Ruiz Zafon','book','Mystery',19.95,24.95,'/media/book-001.jpg','[]',
	   'A boy, a forgotten book and a city of secrets.',4.8,2341,12,'9780143034902',487,'Penguin','English',0,1,1),
	  ('book-002','One Hundred Years of Solitude','Gabriel Garcia Marquez','book','Literary Fiction',16.50,NULL,'/media/book-002.jpg','[]',
	   'Seven generations of the Buendia family.',4.7,1876,8,'9780060883287',417,'Harper','English',0,1,0),
	  ('book-003','Project Hail Mary','Andy Weir','book','Science Fiction',22.00,NULL,'/media/book-003.jpg','[]',
	   'A lone astronaut and an impossible mission.',4.9,980,3,'9780593135204',496,'Ballantine','English',1,0,0),
	  ('comic-001','Watchmen','Alan Moore','comic','Superhero',29.99,34.99,'/media/comic-001.jpg','[]',
	   'Who watches the watchmen?',4.8,1540,6,'9781401245252',448,'DC Comics','English',0,1,1),
	  ('comic-002','Saga Vol. 1','Brian K. Vaughan','comic','Space Opera',9.99,NULL,'/media/comic-002.jpg','[]',
	   'Star-crossed lovers on the run.',4.6,1120,0,'9781607066019',160,'Image Comics','English',0,0,0),
	  ('comic-003','Maus','Art Spiegelman','comic','Graphic Memoir',14.99,NULL,'/media/comic-003.jpg','[]',
	   'A survivor''s tale.',4.9,2010,15,'9780394747231',296,'Pantheon','English',0,1,0),
	  ('manga-001','One Piece Vol. 1','Eiichiro Oda','manga','Shonen',7.99,9.99,'/media/manga-001.jpg','[]',
	   'Romance Dawn.',4.7,3120,25,'9781569319017',216,'VIZ Media','English',0,1,1),
	  ('manga-002','Chainsaw Man Vol. 1','Tatsuki Fujimoto','manga','Shonen',9.99,NULL,'/media/manga-002.jpg','[]',
	   'Denji and his chainsaw devil Pochita.',4.6,890,4,'9781974709939',192,'VIZ Media','English',1,0,0),
	  ('manga-003','Frieren Vol. 1','Kanehito Yamada','manga','Fantasy',10.99,12.99,'/media/manga-003.jpg','[]',
	   'After the hero''s journey ends.',4.8,640,9,'9781974725762',192,'VIZ Media','English',1,0,1),
	  ('manga-004','Akira Vol. 1','Katsuhiro Otomo','manga','Seinen',39.99,NULL,'/media/manga-004.jpg','[]',
	   'Neo-Tokyo is about to explode.',4.8,760,2,'9781935429005',364,'Kodansha','English',0,0,0)
	ON CONFLICT(id) DO NOTHING
	`); err != nil {
		return err
	}
	return tx.Commit()
}
