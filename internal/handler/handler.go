// Package handler serves the ledger page and its form actions over HTML.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/mmynk/khata/internal/auth"
	"github.com/mmynk/khata/internal/calculator"
	"github.com/mmynk/khata/internal/ledger"
	"github.com/mmynk/khata/internal/storage"
	"github.com/mmynk/khata/internal/view"
)

const pageTitle = "Customer Ledger"

// Handler renders the ledger page and handles its forms.
type Handler struct {
	ledger *ledger.Ledger
	engine *view.Engine
	tokens *auth.FormTokenManager
}

// New creates a Handler.
func New(l *ledger.Ledger, engine *view.Engine, tokens *auth.FormTokenManager) *Handler {
	return &Handler{ledger: l, engine: engine, tokens: tokens}
}

// pageData is what the ledger templates render.
type pageData struct {
	Form     ledger.FormInput
	Page     *ledger.Page
	Messages []string
	Confirm  *confirmPrompt
}

type confirmPrompt struct {
	EntryID string
	Prompt  string
}

// Index renders the whole ledger, filtered by ?q=.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, http.StatusOK, r.URL.Query().Get("q"), pageData{})
}

// Customers renders only the customer list, for live search.
func (h *Handler) Customers(w http.ResponseWriter, r *http.Request) {
	page, err := h.ledger.Page(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "customers", pageData{Page: page})
}

// Submit handles the entry form. Success redirects back to the ledger; a
// rejected submission re-renders the form with its values and the message.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	in := ledger.FormInput{
		Name:        r.PostForm.Get("name"),
		Date:        r.PostForm.Get("date"),
		Product:     r.PostForm.Get("product"),
		Price:       r.PostForm.Get("price"),
		PaymentType: r.PostForm.Get("payment"),
	}
	query := r.PostForm.Get("q")

	inbox := &ledger.Inbox{}
	if _, err := h.ledger.Submit(r.Context(), in, inbox); err != nil {
		if !isRejected(err) {
			h.fail(w, r, err)
			return
		}
		h.renderPage(w, r, http.StatusUnprocessableEntity, query, pageData{
			Form:     in,
			Messages: inbox.Messages(),
		})
		return
	}

	redirectHome(w, r, query)
}

// Edit renders the ledger with the form filled from an entry.
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	form, err := h.ledger.Edit(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.renderPage(w, r, http.StatusOK, "", pageData{Form: form})
}

// Delete removes an entry once confirm=yes is posted. Without it the page is
// rendered with the confirmation prompt.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "id")
	confirmed := r.PostFormValue("confirm") == "yes"

	var prompt *confirmPrompt
	confirm := ledger.ConfirmFunc(func(_ context.Context, text string) bool {
		if !confirmed {
			prompt = &confirmPrompt{EntryID: entryID, Prompt: text}
		}
		return confirmed
	})

	result, err := h.ledger.Delete(r.Context(), entryID, confirm)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if result.Deleted {
		redirectHome(w, r, "")
		return
	}
	h.renderPage(w, r, http.StatusOK, "", pageData{Confirm: prompt})
}

// AnnounceTotal renders the ledger with the label of the activated total.
func (h *Handler) AnnounceTotal(w http.ResponseWriter, r *http.Request) {
	inbox := &ledger.Inbox{}
	kind := ledger.TotalKind(chi.URLParam(r, "kind"))
	if _, err := h.ledger.AnnounceTotal(r.Context(), chi.URLParam(r, "id"), kind, inbox); err != nil {
		h.fail(w, r, err)
		return
	}
	h.renderPage(w, r, http.StatusOK, "", pageData{Messages: inbox.Messages()})
}

// Healthz reports liveness.
func Healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, status int, query string, data pageData) {
	page, err := h.ledger.Page(r.Context(), query)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	data.Page = page
	h.render(w, r, status, "ledger", data)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	token, err := h.tokens.Issue()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	err = h.engine.Render(w, status, name, view.TemplateData{
		Title:     pageTitle,
		FormToken: token,
		Data:      data,
	})
	if err != nil {
		slog.Error("Render failed", "template", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error("Request failed", "path", r.URL.Path, "error", err)
	}
	http.Error(w, http.StatusText(status), status)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrUnknownTotal):
		return http.StatusBadRequest
	case isRejected(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// isRejected reports whether a submission was refused because of its input.
func isRejected(err error) bool {
	var validationErr *ledger.ValidationError
	var parseErr *calculator.ParseError
	return errors.As(err, &validationErr) || errors.As(err, &parseErr)
}

func redirectHome(w http.ResponseWriter, r *http.Request, query string) {
	target := "/"
	if query != "" {
		target += "?q=" + url.QueryEscape(query)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
