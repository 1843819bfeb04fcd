package http

import (
	"net/http"
	"strings"
)

type RouterConfig struct {
	Auth        *AuthHandler
	Accounts    *AccountHandler
	Departments *DepartmentHandler
	Employees   *EmployeeHandler
	Requests    *RequestHandler
	Profile     *ProfileHandler

	// Admin wraps the account, department, and employee route groups,
	// typically with RequireAdmin.
	Admin      func(http.Handler) http.Handler
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	adminOnly := func(h http.HandlerFunc) http.HandlerFunc {
		if cfg.Admin == nil {
			return h
		}
		return cfg.Admin(h).ServeHTTP
	}

	// The "/" pattern also catches unknown paths, which fall back to the
	// home payload the way the single-page client fell back to its home view.
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		serveHome(w)
	})

	if cfg.Auth != nil {
		mux.HandleFunc("/register", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.Register(w, r)
		})
		mux.HandleFunc("/verifications/pending", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Auth.PendingVerification(w, r)
		})
		mux.HandleFunc("/verifications/confirm", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.ConfirmVerification(w, r)
		})
		mux.HandleFunc("/sessions", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.CreateSession(w, r)
		})
		mux.HandleFunc("/sessions/current", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Auth.CurrentSession(w, r)
			case http.MethodDelete:
				cfg.Auth.DeleteCurrentSession(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodDelete)
			}
		})
	}

	if cfg.Profile != nil {
		mux.HandleFunc("/profile", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Profile.Get(w, r)
			case http.MethodPut:
				cfg.Profile.Update(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut)
			}
		})
	}

	if cfg.Accounts != nil {
		mux.HandleFunc("/accounts", adminOnly(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Accounts.List(w, r)
			case http.MethodPost:
				cfg.Accounts.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		}))
		mux.HandleFunc("/accounts/", adminOnly(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/accounts/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			if rest, ok := strings.CutSuffix(id, "/password"); ok && rest != "" {
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				r = r.WithContext(ContextWithAccountID(r.Context(), rest))
				cfg.Accounts.ResetPassword(w, r)
				return
			}
			r = r.WithContext(ContextWithAccountID(r.Context(), id))
			switch r.Method {
			case http.MethodPut:
				cfg.Accounts.Update(w, r)
			case http.MethodDelete:
				cfg.Accounts.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodPut, http.MethodDelete)
			}
		}))
	}

	if cfg.Departments != nil {
		mux.HandleFunc("/departments", adminOnly(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Departments.List(w, r)
			case http.MethodPost:
				cfg.Departments.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		}))
		mux.HandleFunc("/departments/", adminOnly(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/departments/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithDepartmentID(r.Context(), id))
			switch r.Method {
			case http.MethodPut:
				cfg.Departments.Update(w, r)
			case http.MethodDelete:
				cfg.Departments.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodPut, http.MethodDelete)
			}
		}))
	}

	if cfg.Employees != nil {
		mux.HandleFunc("/employees", adminOnly(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Employees.List(w, r)
			case http.MethodPost:
				cfg.Employees.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		}))
		mux.HandleFunc("/employees/", adminOnly(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/employees/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithEmployeeID(r.Context(), id))
			switch r.Method {
			case http.MethodPut:
				cfg.Employees.Update(w, r)
			case http.MethodDelete:
				cfg.Employees.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodPut, http.MethodDelete)
			}
		}))
	}

	if cfg.Requests != nil {
		mux.HandleFunc("/requests", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Requests.List(w, r)
			case http.MethodPost:
				cfg.Requests.Submit(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/requests/", func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/requests/")
			rest, ok := strings.CutSuffix(id, "/status")
			if !ok || rest == "" {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodPut {
				methodNotAllowed(w, http.MethodPut)
				return
			}
			r = r.WithContext(ContextWithRequestID(r.Context(), rest))
			cfg.Requests.SetStatus(w, r)
		})
	}

	var handler http.Handler = mux
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}

func serveHome(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"page":"home","message":"Welcome to the HR portal."}` + "\n"))
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
