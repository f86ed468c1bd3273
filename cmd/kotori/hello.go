package main

import (
	"database/sql"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrymomot/kotori"
	"github.com/dmitrymomot/kotori/pkg/db"
)

// news is a row of the news table.
type news struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// hello is the demo controller behind routes.yaml.
type hello struct {
	db *db.DB
}

func newHello(d *db.DB) *hello {
	return &hello{db: d}
}

func (h *hello) Actions() kotori.Actions {
	return kotori.Actions{
		"index":      h.index,
		"showNews":   h.showNews,
		"addNews":    h.addNews,
		"insertNews": h.insertNews,
		"cron":       h.cron,
	}
}

func (h *hello) index(c kotori.Context) error {
	visits := 0
	if sess, err := c.Session(); err == nil {
		if sess == nil {
			if err := c.InitSession(); err != nil {
				return err
			}
		}
		if v, err := c.SessionValue("visits"); err == nil {
			if f, ok := v.(float64); ok {
				visits = int(f)
			}
		}
		visits++
		_ = c.SetSessionValue("visits", visits)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"hello":  "kotori",
		"now":    c.Now().Format(time.RFC3339),
		"visits": visits,
	})
}

func (h *hello) showNews(c kotori.Context) error {
	id := kotori.Arg[int64](c, 0)
	if h.db == nil {
		return c.Error(http.StatusServiceUnavailable, "Database is not configured", kotori.WithCause(db.ErrNotConfigured))
	}

	var n news
	err := h.db.QueryRow(c, "SELECT id, title, created_at FROM news WHERE id = $1", id).
		Scan(&n.ID, &n.Title, &n.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return c.Error(http.StatusNotFound, "News not found", kotori.WithCause(err))
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, n)
}

var addNewsForm = template.Must(template.New("add").Parse(`<!DOCTYPE html>
<html><body>
<form method="post" action="/add">
<input name="title" placeholder="Title">
<button>Add</button>
</form>
{{with .}}<p>{{.}}</p>{{end}}
</body></html>`))

func (h *hello) addNews(c kotori.Context) error {
	var flash string
	_ = c.Flash("news", &flash)
	var b strings.Builder
	if err := addNewsForm.Execute(&b, flash); err != nil {
		return err
	}
	return c.HTML(http.StatusOK, b.String())
}

func (h *hello) insertNews(c kotori.Context) error {
	title := strings.TrimSpace(c.Form("title"))
	if title == "" {
		return c.Error(http.StatusBadRequest, "Title is required")
	}
	if h.db == nil {
		return c.Error(http.StatusServiceUnavailable, "Database is not configured", kotori.WithCause(db.ErrNotConfigured))
	}

	if _, err := h.db.Exec(c, "INSERT INTO news (title) VALUES ($1)", title); err != nil {
		return err
	}
	_ = c.SetFlash("news", "Added "+title)
	return c.Redirect(http.StatusSeeOther, "/add")
}

func (h *hello) cron(c kotori.Context) error {
	if !c.IsCLI() {
		return c.Halt(http.StatusForbidden, "cron runs from the command line")
	}
	job := c.Arg(0)
	c.LogInfo("cron", "job", job)

	if job == "cleanup" && h.db != nil {
		res, err := h.db.Exec(c, "DELETE FROM news WHERE created_at < $1", c.Now().AddDate(0, -1, 0))
		if err != nil {
			return err
		}
		n, _ := res.RowsAffected()
		return c.String(http.StatusOK, "removed "+strconv.FormatInt(n, 10))
	}
	return c.String(http.StatusOK, "ran "+job)
}
