package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"sat-practice-service/internal/app"
	"sat-practice-service/internal/domain"
)

// Options configures session cookies.
type Options struct {
	CookieName string
	SecretKey  []byte
	Secure     bool
	SessionTTL time.Duration
}

// Handler serves the HTML practice surface and the live practice channel.
type Handler struct {
	accounts *app.AccountService
	practice *app.PracticeService
	cookies  *sessionCookies
	pages    *pages
	ws       *WSHandler
	log      logrus.FieldLogger
}

func NewHandler(accounts *app.AccountService, practice *app.PracticeService, sessions app.SessionRepository, opts Options, log logrus.FieldLogger) *Handler {
	if opts.CookieName == "" {
		opts.CookieName = "sat_session"
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 24 * time.Hour
	}
	return &Handler{
		accounts: accounts,
		practice: practice,
		cookies:  newSessionCookies(opts.CookieName, opts.SecretKey, opts.Secure, opts.SessionTTL, sessions),
		pages:    mustParsePages(),
		ws:       NewWSHandler(practice, sessions, log),
		log:      log,
	}
}

// Routes wires every endpoint. Everything except login, register, logout and
// healthz goes through requireSession.
func (h *Handler) Routes() http.Handler {
	r := mux.NewRouter()
	r.Use(h.logRequests)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	r.HandleFunc("/login", h.loginPage).Methods(http.MethodGet)
	r.HandleFunc("/login", h.login).Methods(http.MethodPost)
	r.HandleFunc("/register", h.registerPage).Methods(http.MethodGet)
	r.HandleFunc("/register", h.register).Methods(http.MethodPost)
	r.HandleFunc("/logout", h.logout).Methods(http.MethodGet)

	r.HandleFunc("/", h.requireSession(h.home)).Methods(http.MethodGet)
	r.HandleFunc("/practice", h.requireSession(h.practicePage)).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/test", h.requireSession(h.fullTest)).Methods(http.MethodGet)
	r.HandleFunc("/submit", h.requireSession(h.submit)).Methods(http.MethodPost)
	r.HandleFunc("/ws", h.requireSession(h.ws.ServeWS)).Methods(http.MethodGet)
	return r
}

func (h *Handler) loginPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "login.html", pageData{Title: "Log in"})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	username, password := r.PostFormValue("username"), r.PostFormValue("password")
	account, err := h.accounts.Authenticate(r.Context(), username, password)
	if errors.Is(err, domain.ErrInvalidCredentials) {
		h.render(w, r, http.StatusUnauthorized, "login.html", pageData{Title: "Log in", Message: "Invalid credentials."})
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.cookies.issue(w, r, account.ID); err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) registerPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "register.html", pageData{Title: "Register"})
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	username, password := r.PostFormValue("username"), r.PostFormValue("password")
	_, err := h.accounts.Register(r.Context(), username, password)
	switch {
	case err == nil:
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	case errors.Is(err, domain.ErrDuplicateUsername):
		h.render(w, r, http.StatusConflict, "register.html", pageData{Title: "Register", Message: "Username already exists."})
	case errors.Is(err, domain.ErrInvalidRegistration):
		h.render(w, r, http.StatusBadRequest, "register.html", pageData{Title: "Register", Message: "Username and password are required."})
	case errors.Is(err, domain.ErrPasswordTooLong):
		msg := fmt.Sprintf("Password must be at most %d bytes.", app.MaxPasswordBytes)
		h.render(w, r, http.StatusBadRequest, "register.html", pageData{Title: "Register", Message: msg})
	default:
		h.fail(w, r, err)
	}
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.cookies.destroy(w, r); err != nil {
		h.log.WithError(err).Warn("delete session")
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) home(w http.ResponseWriter, r *http.Request, session *domain.Session) {
	account, err := h.accounts.Account(r.Context(), session.AccountID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	attempts, err := h.accounts.Progress(r.Context(), account.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	flashes := session.PopFlashes()
	if len(flashes) > 0 {
		if err := h.cookies.save(r.Context(), *session); err != nil {
			h.fail(w, r, err)
			return
		}
	}
	h.render(w, r, http.StatusOK, "index.html", pageData{
		Title:    "Home",
		Username: account.Username,
		Flashes:  flashes,
		Attempts: attempts,
	})
}

func (h *Handler) practicePage(w http.ResponseWriter, r *http.Request, _ *domain.Session) {
	data := pageData{Title: "Practice", Topics: h.practice.Topics()}
	if r.Method != http.MethodPost {
		h.render(w, r, http.StatusOK, "practice.html", data)
		return
	}

	data.Topic = r.PostFormValue("topic")
	questions, err := h.practice.Select(r.Context(), data.Topic)
	if status, msg, ok := userError(err); ok {
		data.Message = msg
		h.render(w, r, status, "practice.html", data)
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	data.Questions = questions
	h.render(w, r, http.StatusOK, "practice.html", data)
}

func (h *Handler) fullTest(w http.ResponseWriter, r *http.Request, _ *domain.Session) {
	questions, err := h.practice.FullTest(r.Context())
	data := pageData{Title: "Full test", Questions: questions}
	if status, msg, ok := userError(err); ok {
		data.Message = msg
		h.render(w, r, status, "test.html", data)
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "test.html", data)
}

// submit treats every form field as an answer keyed by question id.
func (h *Handler) submit(w http.ResponseWriter, r *http.Request, session *domain.Session) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form", http.StatusBadRequest)
		return
	}
	answers := make(map[string]string, len(r.PostForm))
	for id, values := range r.PostForm {
		answers[id] = values[0]
	}

	result, err := h.practice.Submit(r.Context(), session.AccountID, answers)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	session.AddFlash(fmt.Sprintf("Score: %d/%d", result.Score, result.Total))
	if err := h.cookies.save(r.Context(), *session); err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// userError maps errors a user can act on to a status and message.
func userError(err error) (int, string, bool) {
	switch {
	case errors.Is(err, domain.ErrUnknownTopic):
		return http.StatusBadRequest, "Unknown topic.", true
	case errors.Is(err, domain.ErrInsufficientQuestions):
		return http.StatusUnprocessableEntity, "There are no questions to practice yet.", true
	default:
		return 0, "", false
	}
}

// fail logs err and answers with a generic 500.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.log.WithError(err).WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
	}).Error("request failed")
	http.Error(w, "internal error", http.StatusInternalServerError)
}
