package admin

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ghaggin/openvpn-admin/internal/middleware"
	"github.com/ghaggin/openvpn-admin/internal/model"
	"github.com/ghaggin/openvpn-admin/internal/template"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	serviceName = "openvpn-admin"

	msgUnavailable        = "Service temporarily unavailable"
	msgRateLimited        = "Rate limit exceeded"
	msgTokenMismatch      = "Security token mismatch"
	msgInvalidCredentials = "Invalid credentials"

	actionLogout = "logout"
)

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Service   string `json:"service"`
}

func (a *Admin) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(healthResponse{
		Status:    "healthy",
		Timestamp: a.ctrl.Now().Format(time.RFC3339),
		Service:   serviceName,
	})
}

// index resolves every request to exactly one of: login form, redirect,
// dashboard or an error status.
func (a *Admin) index(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := a.log.With(
		zap.String("request_id", middleware.RequestID(ctx)),
		zap.String("remote_addr", r.RemoteAddr),
	)

	creds, err := a.creds.Load()
	if err != nil {
		log.Error("invalid or default credentials detected", zap.Error(err))
		http.Error(w, msgUnavailable, http.StatusServiceUnavailable)
		return
	}

	session := a.sessions.Load(ctx)

	if err := a.ctrl.Track(session); err != nil {
		a.sessions.Save(ctx, session)
		log.Warn("session rate limit exceeded", zap.Int("requests", len(session.Requests)))
		http.Error(w, msgRateLimited, http.StatusTooManyRequests)
		return
	}

	if err := a.ctrl.EnsureCSRF(session); err != nil {
		a.serverError(w, log, err)
		return
	}
	a.sessions.Save(ctx, session)

	var loginErr string
	if r.Method == http.MethodPost {
		r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
		err := a.ctrl.Login(session, creds, LoginForm{
			CSRFToken: r.PostFormValue("csrf_token"),
			Username:  r.PostFormValue("username"),
			Password:  r.PostFormValue("password"),
		})
		switch {
		case err == nil:
			if err := a.sessions.Renew(ctx); err != nil {
				a.serverError(w, log, err)
				return
			}
			a.sessions.Save(ctx, session)
			log.Info("admin logged in", zap.String("user", session.User))
			http.Redirect(w, r, "/", http.StatusFound)
			return
		case errors.Is(err, ErrCSRFMismatch):
			loginErr = msgTokenMismatch
			log.Warn("failed login attempt: csrf token mismatch")
		default:
			loginErr = msgInvalidCredentials
			log.Warn("failed login attempt: invalid credentials")
		}
	}

	if a.ctrl.Expired(session) {
		log.Info("session timed out", zap.String("user", session.User))
		a.destroy(w, r, log)
		return
	}

	if r.URL.Query().Get("action") == actionLogout {
		log.Info("admin logged out", zap.String("user", session.User))
		a.destroy(w, r, log)
		return
	}

	if !session.Authenticated {
		a.render(w, log, template.LoginPage, &template.LoginData{
			PageTitle: "OpenVPN Admin Panel",
			Error:     loginErr,
			CSRFToken: session.CSRFToken,
		})
		return
	}

	a.dashboard(w, r, log, session)
}

func (a *Admin) dashboard(w http.ResponseWriter, r *http.Request, log *zap.Logger, session *model.Session) {
	status := a.prober.Probe(r.Context())

	if d := a.cfg.Dashboard.RefreshInterval; d > 0 {
		w.Header().Set("Refresh", strconv.Itoa(int(d/time.Second)))
	}

	a.render(w, log, template.DashboardPage, &template.DashboardData{
		PageTitle:     "OpenVPN Admin Dashboard",
		User:          session.User,
		Status:        string(status),
		Running:       status == StatusRunning,
		ClientCount:   0,
		Uptime:        "N/A",
		StatusPageURL: a.statusPageURL(r),
		Commands:      clientCommands(a.cfg.Dashboard.ContainerName),
	})
}

func (a *Admin) destroy(w http.ResponseWriter, r *http.Request, log *zap.Logger) {
	if err := a.sessions.Destroy(r.Context()); err != nil {
		a.serverError(w, log, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (a *Admin) render(w http.ResponseWriter, log *zap.Logger, page string, td any) {
	if err := a.renderer.Render(w, page, td); err != nil {
		a.serverError(w, log, err)
	}
}

func (a *Admin) serverError(w http.ResponseWriter, log *zap.Logger, err error) {
	log.Error("request failed", zap.Error(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// statusPageURL points at the status page on the host the client used to
// reach the dashboard.
func (a *Admin) statusPageURL(r *http.Request) string {
	port := a.cfg.Dashboard.StatusPagePort
	if port <= 0 || r.Host == "" {
		return ""
	}

	host, _, err := net.SplitHostPort(r.Host)
	if err != nil {
		host = strings.Trim(r.Host, "[]")
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(port))
}

func clientCommands(container string) []template.Command {
	exec := func(args string) string {
		return fmt.Sprintf("docker exec %s %s", container, args)
	}
	return []template.Command{
		{Description: "Create client certificate", Command: exec("easyrsa build-client-full CLIENT_NAME nopass")},
		{Description: "Get client configuration", Command: exec("ovpn_getclient CLIENT_NAME > CLIENT_NAME.ovpn")},
		{Description: "List all clients", Command: exec("ovpn_listclients")},
		{Description: "Revoke client certificate", Command: exec("ovpn_revokeclient CLIENT_NAME")},
		{Description: "Create backup", Command: exec("/usr/local/bin/backup-certs.sh")},
	}
}
