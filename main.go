package main

import (
	"net/http"
	"sort"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/km-arc/go-autowire/framework/app"
	"github.com/km-arc/go-autowire/framework/container"
	"github.com/km-arc/go-autowire/framework/logging"
	"github.com/km-arc/go-autowire/framework/types"
	"github.com/km-arc/go-autowire/framework/validation"
	gohttp "github.com/km-arc/go-autowire/http"
	"github.com/km-arc/go-autowire/routing"
)

func main() {
	application := app.New() // loads .env automatically

	// ── Modules ──────────────────────────────────────────────────────────────
	//
	// Constructors are all the wiring there is: the resolver reads their
	// parameter lists and builds the object graph on demand.

	domain := application.Module("domain")
	domain.Provide(NewUserStore)
	domain.Provide(NewUserService)

	web := application.Module("web", "domain")
	web.Provide(NewUserController)

	users := container.MustResolve[*UserController](application.Container)

	// ── Parameterized definitions ─────────────────────────────────────────────
	//
	// Shelf is declared open over one type argument. Shelf[Post] never gets
	// an implementation of its own; the resolver closes the open in-memory
	// shelf over Post when asked.

	content := application.Module("content")
	post := content.Define("Post")
	shelf := content.DefineInterface("Shelf", types.Arity(1))
	content.Define("MemShelf", types.Arity(1),
		types.Implements(types.App(shelf, types.Arg(0))),
		types.Ctor(func([]any) (any, error) { return NewPostShelf(), nil }),
	)

	posts, err := container.As[*PostShelf](application.Container, shelf.Of(post))
	if err != nil {
		application.Log.Fatal("wiring content module", zap.Error(err))
	}

	r := application.Router()

	// ── Basic routes ─────────────────────────────────────────────────────────

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		res := gohttp.NewResponse(w)
		res.Success(map[string]any{"message": "Welcome to go-autowire!"})
	})

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		gohttp.NewResponse(w).Success(map[string]any{"status": "ok"})
	})

	// ── API routes ───────────────────────────────────────────────────────────

	r.Prefix("/api/v1", func(api *routing.Router) {

		api.Get("/users", users.Index)
		api.Post("/users", users.Store)
		api.Get("/users/{id}", users.Show)

		api.Get("/posts", func(w http.ResponseWriter, req *http.Request) {
			gohttp.NewResponse(w).Success(posts.Titles())
		})

		api.Post("/posts", func(w http.ResponseWriter, req *http.Request) {
			request := gohttp.NewRequest(req)
			res := gohttp.NewResponse(w)

			if errs := request.Validate(validation.Rules{
				"title": "required|min:3",
			}); errs.Has() {
				res.ValidationError(errs)
				return
			}

			posts.Add(request.Input("title"))
			res.Created(map[string]any{"title": request.Input("title")})
		})
	})

	// ── Auth group with middleware ─────────────────────────────────────────────

	r.Group(func(protected *routing.Router) {
		protected.Middleware(AuthMiddleware)

		protected.Get("/profile", func(w http.ResponseWriter, req *http.Request) {
			res := gohttp.NewResponse(w)
			res.Success(map[string]any{"user": "authenticated"})
		})
	})

	application.Run()
}

// AuthMiddleware is an example token guard.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := gohttp.NewRequest(r)
		res := gohttp.NewResponse(w)

		if req.BearerToken() == "" {
			res.Unauthorized()
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ── Domain ────────────────────────────────────────────────────────────────────

// User is the demo's only entity.
type User struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserStore keeps users in memory. The resolver shares one instance across
// every consumer because nothing marks it transient.
type UserStore struct {
	mu    sync.Mutex
	next  int
	users map[int]User
}

func NewUserStore() *UserStore {
	return &UserStore{next: 1, users: make(map[int]User)}
}

func (s *UserStore) Create(name, email string) User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := User{ID: s.next, Name: name, Email: email}
	s.users[u.ID] = u
	s.next++
	return u
}

func (s *UserStore) Find(id int) (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	return u, ok
}

func (s *UserStore) All() []User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// UserService fronts the store. Its constructor parameters are resolved
// automatically, the framework logger included.
type UserService struct {
	store *UserStore
	log   *logging.Logger
}

func NewUserService(store *UserStore, log *logging.Logger) *UserService {
	return &UserService{store: store, log: log.Named("users")}
}

func (s *UserService) Create(name, email string) User {
	u := s.store.Create(name, email)
	s.log.Info("user created", zap.Int("id", u.ID), zap.String("email", u.Email))
	return u
}

func (s *UserService) Find(id int) (User, bool) { return s.store.Find(id) }
func (s *UserService) All() []User              { return s.store.All() }

// PostShelf is what the open MemShelf definition builds, whatever type it
// gets closed over.
type PostShelf struct {
	mu     sync.Mutex
	titles []string
}

func NewPostShelf() *PostShelf { return &PostShelf{} }

func (s *PostShelf) Add(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.titles = append(s.titles, title)
}

func (s *PostShelf) Titles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.titles...)
}

// ── Controllers ───────────────────────────────────────────────────────────────

// UserController handles /api/v1/users. It embeds app.Controller for the
// request and response helpers; its dependencies arrive through the resolver.
type UserController struct {
	app.Controller
	users *UserService
}

func NewUserController(users *UserService) *UserController {
	return &UserController{users: users}
}

func (c *UserController) Index(w http.ResponseWriter, r *http.Request) {
	c.Response(w).Success(c.users.All())
}

func (c *UserController) Store(w http.ResponseWriter, r *http.Request) {
	req := c.Request(r)
	res := c.Response(w)

	var body struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := req.Bind(&body); err != nil {
		res.Error(http.StatusBadRequest, err.Error())
		return
	}

	errs := validation.Check(map[string]string{
		"name":  body.Name,
		"email": body.Email,
	}, validation.Rules{
		"name":  "required|min:2|max:100",
		"email": "required|email",
	})
	if errs.Has() {
		res.ValidationError(errs)
		return
	}

	res.Created(c.users.Create(body.Name, body.Email))
}

func (c *UserController) Show(w http.ResponseWriter, r *http.Request) {
	res := c.Response(w)

	id, err := strconv.Atoi(routing.Param(r, "id"))
	if err != nil {
		res.Error(http.StatusBadRequest, "id must be numeric")
		return
	}

	u, ok := c.users.Find(id)
	if !ok {
		res.NotFound()
		return
	}
	res.Success(u)
}
