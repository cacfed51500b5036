package http

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"sat-practice-service/internal/app"
	"sat-practice-service/internal/domain"
	"sat-practice-service/internal/infra/memory"
)

type testEnv struct {
	server   *httptest.Server
	accounts *memory.AccountStore
	sessions *memory.SessionStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	bank, err := domain.NewBank(sampleTopics())
	if err != nil {
		t.Fatalf("bank: %v", err)
	}
	accounts := memory.NewAccountStore()
	sessions := memory.NewSessionStore(time.Hour)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	handler := NewHandler(
		app.NewAccountService(accounts, app.BcryptHasher{Cost: bcrypt.MinCost}),
		app.NewPracticeService(bank, app.NewSelector(bank), accounts),
		sessions,
		Options{CookieName: "sat_session", SecretKey: []byte("test-secret-key-0123456789abcdef"), SessionTTL: time.Hour},
		logger,
	)
	server := httptest.NewServer(handler.Routes())
	t.Cleanup(server.Close)
	return &testEnv{server: server, accounts: accounts, sessions: sessions}
}

func sampleTopics() []domain.Topic {
	return []domain.Topic{
		{Name: "Math", Questions: []domain.Question{
			{ID: 1, Text: "What is two plus two?", Choices: []domain.Choice{{Key: "A", Text: "4"}, {Key: "B", Text: "5"}}, Correct: "A"},
			{ID: 2, Text: "What is three times three?", Choices: []domain.Choice{{Key: "A", Text: "6"}, {Key: "B", Text: "9"}}, Correct: "B"},
		}},
		{Name: "Algebra", Questions: []domain.Question{
			{ID: 3, Text: "Solve for x when x plus one is three", Choices: []domain.Choice{{Key: "A", Text: "2"}, {Key: "B", Text: "3"}}, Correct: "A"},
		}},
	}
}

// newClient returns a cookie-keeping client that does not follow redirects.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func get(t *testing.T, c *http.Client, u string) (*http.Response, string) {
	t.Helper()
	resp, err := c.Get(u)
	if err != nil {
		t.Fatalf("GET %s: %v", u, err)
	}
	return resp, readBody(t, resp)
}

func postForm(t *testing.T, c *http.Client, u string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := c.PostForm(u, form)
	if err != nil {
		t.Fatalf("POST %s: %v", u, err)
	}
	return resp, readBody(t, resp)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(b)
}

func expectRedirect(t *testing.T, resp *http.Response, location string) {
	t.Helper()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Location"); got != location {
		t.Fatalf("expected redirect to %s, got %s", location, got)
	}
}

// registerAndLogin leaves c holding an authenticated session cookie.
func registerAndLogin(t *testing.T, env *testEnv, c *http.Client, username, password string) {
	t.Helper()
	resp, _ := postForm(t, c, env.server.URL+"/register", url.Values{"username": {username}, "password": {password}})
	expectRedirect(t, resp, "/login")
	resp, _ = postForm(t, c, env.server.URL+"/login", url.Values{"username": {username}, "password": {password}})
	expectRedirect(t, resp, "/")
}

func mustContain(t *testing.T, body, want string) {
	t.Helper()
	if !strings.Contains(body, want) {
		t.Fatalf("expected body to contain %q, got:\n%s", want, body)
	}
}
