// Package apitest runs an in-memory fake of the storefront REST API for tests.
package apitest

import (
	"encoding/json"
	"net"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fasthttp/router"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
	"go.uber.org/zap"

	"github.com/fastygo/storefront/api/gateway"
	"github.com/fastygo/storefront/domain"
)

// BaseURL is the address clients built by Server.Client use.
const BaseURL = "http://storefront.test/api"

// Call records one request received by the fake.
type Call struct {
	Method        string
	Path          string
	Authorization string
	RequestID     string
}

type account struct {
	ID        int64
	Name      string
	Email     string
	Password  string
	Admin     bool
	CreatedAt time.Time
}

type principal struct {
	account *account
}

type canned struct {
	status int
	body   string
}

// Server is the fake API. All state is guarded by mu.
type Server struct {
	ln     *fasthttputil.InmemoryListener
	server *fasthttp.Server

	mu         sync.Mutex
	users      map[string]*account
	admins     map[string]*account
	tokens     map[string]principal
	products   map[int64]*domain.Product
	categories map[int64]*domain.Category
	orders     []*domain.Order
	logs       []domain.ActivityLog
	canned     map[string]canned
	calls      []Call
	nextID     int64
}

// New starts a fake API. Call Close when done.
func New() *Server {
	s := &Server{
		ln:         fasthttputil.NewInmemoryListener(),
		users:      make(map[string]*account),
		admins:     make(map[string]*account),
		tokens:     make(map[string]principal),
		products:   make(map[int64]*domain.Product),
		categories: make(map[int64]*domain.Category),
		canned:     make(map[string]canned),
	}
	s.server = &fasthttp.Server{Handler: s.handler(s.routes().Handler)}
	go func() {
		_ = s.server.Serve(s.ln)
	}()
	return s
}

func (s *Server) Close() {
	_ = s.server.Shutdown()
	_ = s.ln.Close()
}

// Dial connects to the fake over the in-memory listener.
func (s *Server) Dial(string) (net.Conn, error) {
	return s.ln.Dial()
}

// Client returns a gateway pointed at the fake.
func (s *Server) Client(credentials gateway.CredentialSource, logger *zap.Logger) *gateway.Client {
	return gateway.New(gateway.Config{BaseURL: BaseURL, Timeout: 2 * time.Second}, credentials, logger, gateway.WithDial(s.Dial))
}

// Respond makes every later request to method+path (relative to /api) return
// status and body instead of reaching the fake handlers.
func (s *Server) Respond(method, path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.canned[method+" /api"+path] = canned{status: status, body: body}
}

// Calls returns the requests received so far.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallsTo returns the recorded calls for method+path (relative to /api).
func (s *Server) CallsTo(method, path string) []Call {
	var out []Call
	for _, c := range s.Calls() {
		if c.Method == method && c.Path == "/api"+path {
			out = append(out, c)
		}
	}
	return out
}

// AddUser registers a customer account and returns its id.
func (s *Server) AddUser(name, email, password string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addAccount(s.users, name, email, password, false).ID
}

// AddAdmin registers an admin account and returns its id.
func (s *Server) AddAdmin(name, email, password string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addAccount(s.admins, name, email, password, true).ID
}

// AddProduct stores p, assigning an id when p.ID is zero.
func (s *Server) AddProduct(p domain.Product) domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.id()
	}
	p.CreatedAt = domain.NewTimestamp(time.Now())
	p.UpdatedAt = p.CreatedAt
	s.products[p.ID] = &p
	return p
}

func (s *Server) AddCategory(name string) domain.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &domain.Category{ID: s.id(), Name: name, CreatedAt: domain.NewTimestamp(time.Now())}
	s.categories[c.ID] = c
	return *c
}

// RevokeToken makes token unknown to the fake so later calls get a 401.
func (s *Server) RevokeToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
}

// Order returns a stored order by id.
func (s *Server) Order(id int64) (domain.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.ID == id {
			return *o, true
		}
	}
	return domain.Order{}, false
}

func (s *Server) handler(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		method := string(ctx.Method())
		path := string(ctx.Path())

		s.mu.Lock()
		s.calls = append(s.calls, Call{
			Method:        method,
			Path:          path,
			Authorization: string(ctx.Request.Header.Peek(fasthttp.HeaderAuthorization)),
			RequestID:     string(ctx.Request.Header.Peek("X-Request-ID")),
		})
		c, ok := s.canned[method+" "+path]
		s.mu.Unlock()

		if ok {
			ctx.SetStatusCode(c.status)
			if strings.HasPrefix(strings.TrimSpace(c.body), "{") || strings.HasPrefix(strings.TrimSpace(c.body), "[") {
				ctx.SetContentType("application/json")
			} else {
				ctx.SetContentType("text/plain; charset=utf-8")
			}
			ctx.SetBodyString(c.body)
			return
		}
		next(ctx)
	}
}

func (s *Server) routes() *router.Router {
	r := router.New()
	api := r.Group("/api")

	api.POST("/users/login", s.login)
	api.POST("/users/register", s.register)
	api.GET("/users/me", s.me)
	api.POST("/auth-tokens/logout", s.logout)
	api.POST("/auth-tokens/refresh", s.refresh)

	api.POST("/admin/login", s.adminLogin)
	api.GET("/admin/exists", s.adminExists)
	api.POST("/admin/register-first", s.registerFirstAdmin)
	api.GET("/admin/profile", s.admin(s.adminProfile))
	api.GET("/admin/list", s.admin(s.adminList))
	api.POST("/admin/register", s.admin(s.adminRegister))
	api.GET("/admin/activity-logs", s.admin(s.activityLogs))
	api.GET("/admin/activity-logs/my", s.admin(s.myActivityLogs))

	api.GET("/products", s.listProducts)
	api.GET("/products/{id}", s.getProduct)
	api.POST("/admin/products", s.admin(s.createProduct))
	api.PUT("/admin/products/{id}", s.admin(s.updateProduct))
	api.POST("/admin/products/{id}/images", s.admin(s.addImage))
	api.PATCH("/admin/products/{rest:*}", s.admin(s.patchProduct))
	api.DELETE("/admin/products/{rest:*}", s.admin(s.deleteProduct))

	api.GET("/categories", s.listCategories)
	api.POST("/admin/categories", s.admin(s.createCategory))
	api.PUT("/admin/categories/{id}", s.admin(s.updateCategory))
	api.DELETE("/admin/categories/{id}", s.admin(s.deleteCategory))

	api.POST("/orders", s.createOrder)
	api.GET("/orders/my", s.myOrders)
	api.GET("/orders/track/{trackingId}", s.trackOrder)
	api.GET("/admin/orders", s.admin(s.adminOrders))
	api.GET("/admin/orders/{id}", s.admin(s.adminOrder))
	api.PUT("/admin/orders/{id}/status", s.admin(s.updateOrderStatus))

	return r
}

type authedHandler func(ctx *fasthttp.RequestCtx, who *account)

// admin requires a known admin token: 401 without one, 403 for customers.
func (s *Server) admin(next authedHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		who, ok := s.principal(ctx)
		if !ok {
			writeText(ctx, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		if !who.Admin {
			writeText(ctx, http.StatusForbidden, "Not an admin user")
			return
		}
		next(ctx, who)
	}
}

func (s *Server) principal(ctx *fasthttp.RequestCtx) (*account, bool) {
	header := string(ctx.Request.Header.Peek(fasthttp.HeaderAuthorization))
	token := strings.TrimPrefix(header, "Bearer ")
	if token == "" || token == header {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.tokens[token]
	if !ok {
		return nil, false
	}
	return p.account, true
}

type tokenBody struct {
	UserID  int64  `json:"userId"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
	Token   string `json:"token"`
}

func (s *Server) issue(a *account) tokenBody {
	token := uuid.NewString()
	s.tokens[token] = principal{account: a}
	return tokenBody{UserID: a.ID, Name: a.Name, Email: a.Email, IsAdmin: a.Admin, Token: token}
}

func (s *Server) login(ctx *fasthttp.RequestCtx) {
	var creds domain.Credentials
	if !decode(ctx, &creds) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.users[strings.ToLower(creds.Email)]
	if !ok || a.Password != creds.Password {
		writeText(ctx, http.StatusBadRequest, "Invalid email or password")
		return
	}
	writeJSON(ctx, http.StatusOK, s.issue(a))
}

func (s *Server) register(ctx *fasthttp.RequestCtx) {
	var form domain.Registration
	if !decode(ctx, &form) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[strings.ToLower(form.Email)]; exists {
		writeText(ctx, http.StatusBadRequest, "Email is already taken")
		return
	}
	a := s.addAccount(s.users, form.Name, form.Email, form.Password, false)
	writeJSON(ctx, http.StatusOK, s.issue(a))
}

func (s *Server) me(ctx *fasthttp.RequestCtx) {
	who, ok := s.principal(ctx)
	if !ok {
		writeText(ctx, http.StatusUnauthorized, "Invalid or expired token")
		return
	}
	writeJSON(ctx, http.StatusOK, domain.User{ID: who.ID, Name: who.Name, Email: who.Email, IsAdmin: who.Admin})
}

func (s *Server) logout(ctx *fasthttp.RequestCtx) {
	header := string(ctx.Request.Header.Peek(fasthttp.HeaderAuthorization))
	s.RevokeToken(strings.TrimPrefix(header, "Bearer "))
	ctx.SetStatusCode(http.StatusOK)
}

// refresh rotates the caller's token: the old one stops working.
func (s *Server) refresh(ctx *fasthttp.RequestCtx) {
	who, ok := s.principal(ctx)
	if !ok {
		writeText(ctx, http.StatusUnauthorized, "Invalid or expired token")
		return
	}
	header := string(ctx.Request.Header.Peek(fasthttp.HeaderAuthorization))
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, strings.TrimPrefix(header, "Bearer "))
	writeJSON(ctx, http.StatusOK, s.issue(who))
}

func (s *Server) adminLogin(ctx *fasthttp.RequestCtx) {
	var creds domain.Credentials
	if !decode(ctx, &creds) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.admins[strings.ToLower(creds.Email)]
	if !ok || a.Password != creds.Password {
		writeText(ctx, http.StatusUnauthorized, "Invalid admin credentials")
		return
	}
	s.logLocked(a, "LOGIN", "Admin logged in")
	writeJSON(ctx, http.StatusOK, s.issue(a))
}

func (s *Server) adminExists(ctx *fasthttp.RequestCtx) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(ctx, http.StatusOK, len(s.admins) > 0)
}

func (s *Server) registerFirstAdmin(ctx *fasthttp.RequestCtx) {
	var form domain.Registration
	if !decode(ctx, &form) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.admins) > 0 {
		writeText(ctx, http.StatusForbidden, "Admin users already exist. First admin can only be created when there are no admins.")
		return
	}
	a := s.addAccount(s.admins, form.Name, form.Email, form.Password, true)
	writeJSON(ctx, http.StatusCreated, adminView(a))
}

func (s *Server) adminProfile(ctx *fasthttp.RequestCtx, who *account) {
	writeJSON(ctx, http.StatusOK, adminView(who))
}

func (s *Server) adminList(ctx *fasthttp.RequestCtx, _ *account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Admin, 0, len(s.admins))
	for _, a := range s.admins {
		out = append(out, adminView(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(ctx, http.StatusOK, out)
}

func (s *Server) adminRegister(ctx *fasthttp.RequestCtx, who *account) {
	var form domain.Registration
	if !decode(ctx, &form) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.admins[strings.ToLower(form.Email)]; exists {
		writeText(ctx, http.StatusBadRequest, "Email is already in use")
		return
	}
	a := s.addAccount(s.admins, form.Name, form.Email, form.Password, true)
	s.logLocked(who, "CREATE_ADMIN", "Created admin "+a.Email)
	writeJSON(ctx, http.StatusOK, adminView(a))
}

func (s *Server) activityLogs(ctx *fasthttp.RequestCtx, _ *account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(ctx, http.StatusOK, append([]domain.ActivityLog{}, s.logs...))
}

func (s *Server) myActivityLogs(ctx *fasthttp.RequestCtx, who *account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.ActivityLog{}
	for _, l := range s.logs {
		if l.AdminID == who.ID {
			out = append(out, l)
		}
	}
	writeJSON(ctx, http.StatusOK, out)
}

func (s *Server) listProducts(ctx *fasthttp.RequestCtx) {
	args := ctx.QueryArgs()
	search := strings.ToLower(string(args.Peek("search")))
	categoryID, _ := strconv.ParseInt(string(args.Peek("categoryId")), 10, 64)

	s.mu.Lock()
	matched := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		if categoryID > 0 && p.CategoryID != categoryID {
			continue
		}
		matched = append(matched, *p)
	}
	s.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	writeJSON(ctx, http.StatusOK, paginate(matched, args))
}

func (s *Server) getProduct(ctx *fasthttp.RequestCtx) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[pathID(ctx, "id")]
	if !ok {
		writeText(ctx, http.StatusNotFound, "Product not found")
		return
	}
	writeJSON(ctx, http.StatusOK, p)
}

type productBody struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	ImageURL    string          `json:"imageUrl"`
	CategoryID  int64           `json:"categoryId"`
}

func (s *Server) applyProduct(p *domain.Product, body productBody) {
	p.Name = body.Name
	p.Description = body.Description
	p.Price = body.Price
	p.Stock = body.Stock
	p.ImageURL = body.ImageURL
	p.CategoryID = body.CategoryID
	if c, ok := s.categories[body.CategoryID]; ok {
		p.CategoryName = c.Name
	}
	p.UpdatedAt = domain.NewTimestamp(time.Now())
}

func (s *Server) createProduct(ctx *fasthttp.RequestCtx, who *account) {
	var body productBody
	if !decode(ctx, &body) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &domain.Product{ID: s.id(), CreatedAt: domain.NewTimestamp(time.Now())}
	s.applyProduct(p, body)
	s.products[p.ID] = p
	s.logLocked(who, "CREATE_PRODUCT", p.Name)
	writeJSON(ctx, http.StatusCreated, p)
}

func (s *Server) updateProduct(ctx *fasthttp.RequestCtx, who *account) {
	var body productBody
	if !decode(ctx, &body) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[pathID(ctx, "id")]
	if !ok {
		writeText(ctx, http.StatusNotFound, "Product not found")
		return
	}
	s.applyProduct(p, body)
	s.logLocked(who, "UPDATE_PRODUCT", p.Name)
	writeJSON(ctx, http.StatusOK, p)
}

func (s *Server) addImage(ctx *fasthttp.RequestCtx, _ *account) {
	var body struct {
		ImageURL string `json:"imageUrl"`
	}
	if !decode(ctx, &body) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[pathID(ctx, "id")]
	if !ok {
		writeText(ctx, http.StatusNotFound, "Product not found")
		return
	}
	img := domain.ProductImage{ID: s.id(), ProductID: p.ID, ImageURL: body.ImageURL, IsMain: len(p.Images) == 0}
	p.Images = append(p.Images, img)
	writeJSON(ctx, http.StatusCreated, img)
}

// patchProduct serves /admin/products/{id}/stock and /admin/products/images/{id}/main.
func (s *Server) patchProduct(ctx *fasthttp.RequestCtx, _ *account) {
	parts := strings.Split(strings.Trim(pathValue(ctx, "rest"), "/"), "/")
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case len(parts) == 2 && parts[1] == "stock":
		var body struct {
			Stock int `json:"stock"`
		}
		if !decode(ctx, &body) {
			return
		}
		id, _ := strconv.ParseInt(parts[0], 10, 64)
		p, ok := s.products[id]
		if !ok {
			writeText(ctx, http.StatusNotFound, "Product not found")
			return
		}
		p.Stock = body.Stock
		writeJSON(ctx, http.StatusOK, p)
	case len(parts) == 3 && parts[0] == "images" && parts[2] == "main":
		id, _ := strconv.ParseInt(parts[1], 10, 64)
		for _, p := range s.products {
			for i := range p.Images {
				if p.Images[i].ID != id {
					continue
				}
				for j := range p.Images {
					p.Images[j].IsMain = j == i
				}
				ctx.SetStatusCode(http.StatusOK)
				return
			}
		}
		writeText(ctx, http.StatusNotFound, "Image not found")
	default:
		writeText(ctx, http.StatusNotFound, "Not found")
	}
}

// deleteProduct serves /admin/products/{id} and /admin/products/images/{id}.
func (s *Server) deleteProduct(ctx *fasthttp.RequestCtx, who *account) {
	parts := strings.Split(strings.Trim(pathValue(ctx, "rest"), "/"), "/")
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case len(parts) == 1:
		id, _ := strconv.ParseInt(parts[0], 10, 64)
		p, ok := s.products[id]
		if !ok {
			writeText(ctx, http.StatusNotFound, "Product not found")
			return
		}
		delete(s.products, id)
		s.logLocked(who, "DELETE_PRODUCT", p.Name)
		ctx.SetStatusCode(http.StatusNoContent)
	case len(parts) == 2 && parts[0] == "images":
		id, _ := strconv.ParseInt(parts[1], 10, 64)
		for _, p := range s.products {
			for i := range p.Images {
				if p.Images[i].ID == id {
					p.Images = append(p.Images[:i], p.Images[i+1:]...)
					ctx.SetStatusCode(http.StatusNoContent)
					return
				}
			}
		}
		writeText(ctx, http.StatusNotFound, "Image not found")
	default:
		writeText(ctx, http.StatusNotFound, "Not found")
	}
}

func (s *Server) listCategories(ctx *fasthttp.RequestCtx) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(ctx, http.StatusOK, out)
}

type categoryBody struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) createCategory(ctx *fasthttp.RequestCtx, who *account) {
	var body categoryBody
	if !decode(ctx, &body) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if strings.EqualFold(c.Name, body.Name) {
			writeText(ctx, http.StatusBadRequest, "Category with this name already exists")
			return
		}
	}
	c := &domain.Category{ID: s.id(), Name: body.Name, Description: body.Description, CreatedAt: domain.NewTimestamp(time.Now())}
	s.categories[c.ID] = c
	s.logLocked(who, "CREATE_CATEGORY", c.Name)
	writeJSON(ctx, http.StatusCreated, c)
}

func (s *Server) updateCategory(ctx *fasthttp.RequestCtx, _ *account) {
	var body categoryBody
	if !decode(ctx, &body) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[pathID(ctx, "id")]
	if !ok {
		writeText(ctx, http.StatusNotFound, "Category not found")
		return
	}
	c.Name = body.Name
	c.Description = body.Description
	writeJSON(ctx, http.StatusOK, c)
}

func (s *Server) deleteCategory(ctx *fasthttp.RequestCtx, _ *account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := pathID(ctx, "id")
	if _, ok := s.categories[id]; !ok {
		writeText(ctx, http.StatusNotFound, "Category not found")
		return
	}
	delete(s.categories, id)
	ctx.SetStatusCode(http.StatusNoContent)
}

func (s *Server) createOrder(ctx *fasthttp.RequestCtx) {
	var req domain.OrderRequest
	if !decode(ctx, &req) {
		return
	}
	if len(req.Items) == 0 {
		writeText(ctx, http.StatusBadRequest, "Order must contain at least one item")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	order := &domain.Order{
		ID:              s.id(),
		TrackingID:      "TRK-" + strings.ToUpper(uuid.NewString()[:8]),
		Status:          domain.OrderPending,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerEmail:   req.CustomerEmail,
		CustomerAddress: req.CustomerAddress,
		TotalAmount:     req.TotalAmount,
		OrderDate:       domain.NewTimestamp(time.Now()),
	}
	for _, line := range req.Items {
		p, ok := s.products[line.ProductID]
		if !ok {
			writeText(ctx, http.StatusBadRequest, "Product not found: "+strconv.FormatInt(line.ProductID, 10))
			return
		}
		order.Items = append(order.Items, domain.OrderItem{
			ID:          s.id(),
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    line.Quantity,
			Price:       p.Price,
		})
	}
	s.orders = append(s.orders, order)
	writeJSON(ctx, http.StatusCreated, order)
}

func (s *Server) myOrders(ctx *fasthttp.RequestCtx) {
	who, ok := s.principal(ctx)
	if !ok {
		writeText(ctx, http.StatusUnauthorized, "Invalid or expired token")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Order{}
	for _, o := range s.orders {
		if strings.EqualFold(o.CustomerEmail, who.Email) {
			out = append(out, *o)
		}
	}
	writeJSON(ctx, http.StatusOK, out)
}

func (s *Server) trackOrder(ctx *fasthttp.RequestCtx) {
	tracking := pathValue(ctx, "trackingId")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.TrackingID == tracking {
			writeJSON(ctx, http.StatusOK, o)
			return
		}
	}
	writeText(ctx, http.StatusNotFound, "Order not found")
}

func (s *Server) adminOrders(ctx *fasthttp.RequestCtx, _ *account) {
	status := string(ctx.QueryArgs().Peek("status"))
	s.mu.Lock()
	matched := make([]domain.Order, 0, len(s.orders))
	for _, o := range s.orders {
		if status == "" || string(o.Status) == status {
			matched = append(matched, *o)
		}
	}
	s.mu.Unlock()
	writeJSON(ctx, http.StatusOK, paginate(matched, ctx.QueryArgs()))
}

func (s *Server) adminOrder(ctx *fasthttp.RequestCtx, _ *account) {
	o, ok := s.Order(pathID(ctx, "id"))
	if !ok {
		ctx.SetStatusCode(http.StatusNotFound)
		return
	}
	writeJSON(ctx, http.StatusOK, o)
}

func (s *Server) updateOrderStatus(ctx *fasthttp.RequestCtx, who *account) {
	var body struct {
		Status domain.OrderStatus `json:"status"`
	}
	if !decode(ctx, &body) {
		return
	}
	if !body.Status.Valid() {
		writeText(ctx, http.StatusBadRequest, "Invalid status")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := pathID(ctx, "id")
	for _, o := range s.orders {
		if o.ID == id {
			o.Status = body.Status
			s.logLocked(who, "UPDATE_ORDER_STATUS", o.TrackingID+" -> "+string(body.Status))
			writeJSON(ctx, http.StatusOK, o)
			return
		}
	}
	ctx.SetStatusCode(http.StatusNotFound)
}

func (s *Server) addAccount(into map[string]*account, name, email, password string, admin bool) *account {
	a := &account{
		ID:        int64(len(into) + 1),
		Name:      name,
		Email:     email,
		Password:  password,
		Admin:     admin,
		CreatedAt: time.Now(),
	}
	into[strings.ToLower(email)] = a
	return a
}

func (s *Server) logLocked(who *account, action, details string) {
	s.logs = append(s.logs, domain.ActivityLog{
		ID:        int64(len(s.logs) + 1),
		AdminID:   who.ID,
		AdminName: who.Name,
		Action:    action,
		Details:   details,
		Timestamp: domain.NewTimestamp(time.Now()),
	})
}

func (s *Server) id() int64 {
	s.nextID++
	return s.nextID
}

func adminView(a *account) domain.Admin {
	return domain.Admin{ID: a.ID, Name: a.Name, Email: a.Email, CreatedAt: domain.NewTimestamp(a.CreatedAt)}
}

func paginate[T any](items []T, args *fasthttp.Args) domain.Page[T] {
	page, _ := strconv.Atoi(string(args.Peek("page")))
	size, err := strconv.Atoi(string(args.Peek("size")))
	if err != nil || size <= 0 {
		size = 10
	}
	if page < 0 {
		page = 0
	}
	total := len(items)
	from := page * size
	if from > total {
		from = total
	}
	to := from + size
	if to > total {
		to = total
	}
	return domain.Page[T]{
		Content:       append([]T{}, items[from:to]...),
		TotalPages:    (total + size - 1) / size,
		TotalElements: int64(total),
		Number:        page,
		Size:          size,
	}
}

func pathValue(ctx *fasthttp.RequestCtx, name string) string {
	v, _ := ctx.UserValue(name).(string)
	return v
}

func pathID(ctx *fasthttp.RequestCtx, name string) int64 {
	id, _ := strconv.ParseInt(pathValue(ctx, name), 10, 64)
	return id
}

func decode(ctx *fasthttp.RequestCtx, v interface{}) bool {
	if err := json.Unmarshal(ctx.PostBody(), v); err != nil {
		writeText(ctx, http.StatusBadRequest, "Malformed request body")
		return false
	}
	return true
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		writeText(ctx, http.StatusInternalServerError, err.Error())
		return
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	ctx.SetBody(body)
}

func writeText(ctx *fasthttp.RequestCtx, status int, msg string) {
	ctx.SetStatusCode(status)
	ctx.SetContentType("text/plain; charset=utf-8")
	ctx.SetBodyString(msg)
}
