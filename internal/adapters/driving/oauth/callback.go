// Package oauth runs the loopback half of the Imgur OAuth2 authorization
// code flow: a one-shot callback listener and a browser launcher.
package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"sync"
	"time"
)

// CallbackPath is where the provider redirects after consent.
const CallbackPath = "/callback"

// Callback errors.
var (
	ErrStateMismatch = errors.New("oauth callback state mismatch")
	ErrNoCode        = errors.New("oauth callback carried no authorization code")
)

// ProviderError is an error reported by the authorization server in the
// redirect query, for example when the user denies access.
type ProviderError struct {
	Code        string
	Description string
}

func (e *ProviderError) Error() string {
	if e.Description == "" {
		return "authorization denied: " + e.Code
	}
	return fmt.Sprintf("authorization denied: %s (%s)", e.Code, e.Description)
}

type outcome struct {
	code string
	err  error
}

// CallbackServer listens on 127.0.0.1 for a single authorization redirect.
// Only the first redirect is honoured; later ones get the result page but
// are otherwise ignored.
type CallbackServer struct {
	mu     sync.Mutex
	port   int
	state  string
	result chan outcome
	server *http.Server
}

// NewCallbackServer creates a server expecting the given state value.
// Port 0 picks a free port when Start is called.
func NewCallbackServer(port int, state string) *CallbackServer {
	return &CallbackServer{
		port:   port,
		state:  state,
		result: make(chan outcome, 1),
	}
}

// Start binds the listener and serves in the background.
func (s *CallbackServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		return nil
	}

	addr := fmt.Sprintf("127.0.0.1:%d", s.port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	if tcp, ok := ln.Addr().(*net.TCPAddr); ok {
		s.port = tcp.Port
	}

	mux := http.NewServeMux()
	mux.HandleFunc(CallbackPath, s.handleCallback)
	s.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
	}

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.deliver(outcome{err: err})
		}
	}()
	return nil
}

func (s *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var res outcome
	switch {
	case q.Get("error") != "":
		res.err = &ProviderError{Code: q.Get("error"), Description: q.Get("error_description")}
	case q.Get("state") != s.state:
		res.err = ErrStateMismatch
	case q.Get("code") == "":
		res.err = ErrNoCode
	default:
		res.code = q.Get("code")
	}
	s.deliver(res)

	page := resultPage{Title: "Signed in to imgscout", Message: "You can close this tab and return to the terminal."}
	status := http.StatusOK
	if res.err != nil {
		page = resultPage{Title: "Sign-in failed", Message: res.err.Error()}
		status = http.StatusBadRequest
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = resultTemplate.Execute(w, page)
}

func (s *CallbackServer) deliver(res outcome) {
	select {
	case s.result <- res:
	default:
	}
}

// Wait blocks until the redirect arrives or ctx is done.
func (s *CallbackServer) Wait(ctx context.Context) (string, error) {
	select {
	case res := <-s.result:
		return res.code, res.err
	case <-ctx.Done():
		return "", fmt.Errorf("waiting for authorization: %w", ctx.Err())
	}
}

// Stop shuts the listener down.
func (s *CallbackServer) Stop() error {
	s.mu.Lock()
	srv := s.server
	s.server = nil
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

// Port returns the bound port, valid after Start.
func (s *CallbackServer) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

// RedirectURI is the URL to register with the provider.
func (s *CallbackServer) RedirectURI() string {
	return fmt.Sprintf("http://localhost:%d%s", s.Port(), CallbackPath)
}

// NewState returns a random value for the OAuth2 state parameter.
func NewState() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// OpenBrowser asks the desktop to open url.
func OpenBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux", "freebsd", "openbsd":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return cmd.Start()
}

type resultPage struct {
	Title   string
	Message string
}

var resultTemplate = template.Must(template.New("result").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>imgscout</title>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; display: flex; justify-content: center; align-items: center; height: 100vh; margin: 0; background: #121211; color: #f2f2f2; }
.box { text-align: center; padding: 48px 64px; border-radius: 12px; background: #2c2f34; }
h1 { color: #1bb76e; margin: 0 0 8px 0; font-size: 22px; }
p { color: #b4b9c2; margin: 0; }
</style>
</head>
<body>
<div class="box">
<h1>{{.Title}}</h1>
<p>{{.Message}}</p>
</div>
</body>
</html>
`))
