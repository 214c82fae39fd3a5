// Package log writes one JSON object per line through the standard logger.
package log

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Level names the severity of an entry.
type Level string

const (
	LevelInfo  Level = "info"
	LevelAudit Level = "audit"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// SessionKey is the fiber Locals key holding the session id.
const SessionKey = "sid"

type entry struct {
	TS        string         `json:"ts"`
	Level     Level          `json:"level"`
	ReqID     string         `json:"req_id,omitempty"`
	IP        string         `json:"ip,omitempty"`
	Method    string         `json:"method,omitempty"`
	Path      string         `json:"path,omitempty"`
	SessionID string         `json:"session_id,omitempty"`
	Action    string         `json:"action,omitempty"`
	Status    int            `json:"status,omitempty"`
	Err       string         `json:"err,omitempty"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// fill copies request identity from c; c may be nil outside a request.
func (e *entry) fill(c *fiber.Ctx) {
	if c == nil {
		return
	}
	e.IP, e.Method, e.Path = c.IP(), c.Method(), c.Path()
	e.Status = c.Response().StatusCode()
	e.ReqID, _ = c.Locals("requestid").(string)
	e.SessionID, _ = c.Locals(SessionKey).(string)
}

func emit(lvl Level, c *fiber.Ctx, action string, err error, fields map[string]any) {
	e := entry{
		TS:     time.Now().UTC().Format(time.RFC3339),
		Level:  lvl,
		Action: action,
		Fields: fields,
	}
	e.fill(c)
	if err != nil {
		e.Err = err.Error()
	}
	b, mErr := json.Marshal(e)
	if mErr != nil {
		// unencodable field values; keep the line, drop the fields
		e.Fields = map[string]any{"marshal_err": mErr.Error()}
		b, _ = json.Marshal(e)
	}
	log.Println(string(b))
}

func Info(c *fiber.Ctx, action string, fields map[string]any) {
	emit(LevelInfo, c, action, nil, fields)
}

// Audit records a state change requested by a user or operator.
func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	emit(LevelAudit, c, action, nil, fields)
}

func Warn(c *fiber.Ctx, action string, err error, fields map[string]any) {
	emit(LevelWarn, c, action, err, fields)
}

// Security is a warn entry for rejected input, rate limiting and CSRF.
func Security(c *fiber.Ctx, action string, fields map[string]any) {
	emit(LevelWarn, c, action, nil, fields)
}

func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	emit(LevelError, c, action, err, fields)
}
