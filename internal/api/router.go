package api

import (
	"net/http"

	"github.com/zenjaura/marketplace/internal/api/handlers"
	"github.com/zenjaura/marketplace/internal/api/middleware"
	"github.com/zenjaura/marketplace/internal/metrics"
	"github.com/zenjaura/marketplace/internal/models"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	httpSwagger "github.com/swaggo/http-swagger"
)

type Handlers struct {
	User         *handlers.UserHandler
	Book         *handlers.BookHandler
	Package      *handlers.PackageHandler
	Event        *handlers.EventHandler
	Cart         *handlers.CartHandler
	Order        *handlers.OrderHandler
	Payment      *handlers.PaymentHandler
	Notification *handlers.NotificationHandler
	Admin        *handlers.AdminHandler
}

// Options configures the global middleware chain.
type Options struct {
	CORSOrigins []string
	RateLimiter *middleware.IPRateLimiter
	Health      http.Handler
}

func NewRouter(h Handlers, auth *middleware.AuthMiddleware) *http.ServeMux {

	authorOnly := middleware.RequireRole(models.RoleAuthor, models.RoleAdmin)
	admin := func(next http.Handler) http.HandlerFunc {
		return auth.Authenticate(middleware.RequireAdmin(next))
	}

	mux := http.NewServeMux()

	// auth
	mux.HandleFunc("POST /api/auth/register", h.User.Register())
	mux.HandleFunc("POST /api/auth/login", h.User.Login())
	mux.HandleFunc("GET /api/auth/profile", auth.Authenticate(h.User.Profile()))

	// books
	mux.HandleFunc("GET /api/books", h.Book.ListBooks())
	mux.HandleFunc("POST /api/books", auth.Authenticate(authorOnly(h.Book.CreateBook())))
	mux.HandleFunc("GET /api/books/mine", auth.Authenticate(h.Book.MyBooks()))
	mux.HandleFunc("GET /api/books/{id}", auth.Optional(h.Book.GetBook()))
	mux.HandleFunc("PUT /api/books/{id}", auth.Authenticate(h.Book.UpdateBook()))
	mux.HandleFunc("DELETE /api/books/{id}", auth.Authenticate(h.Book.DeleteBook()))
	mux.HandleFunc("POST /api/books/{id}/reviews", auth.Authenticate(h.Book.AddReview()))

	// packages
	mux.HandleFunc("GET /api/packages", h.Package.ListPackages())
	mux.HandleFunc("GET /api/packages/{id}", h.Package.GetPackage())
	mux.HandleFunc("POST /api/packages/{id}/quote", h.Package.Quote())

	// events
	mux.HandleFunc("GET /api/events", h.Event.ListEvents())
	mux.HandleFunc("GET /api/events/{id}", h.Event.GetEvent())
	mux.HandleFunc("POST /api/events/{id}/register", auth.Authenticate(h.Event.Register()))
	mux.HandleFunc("POST /api/events/{id}/purchase", auth.Authenticate(h.Event.Purchase()))
	mux.HandleFunc("GET /api/events/{id}/ticket", auth.Authenticate(h.Event.Ticket()))

	// cart
	mux.HandleFunc("GET /api/cart", auth.Authenticate(h.Cart.GetCart()))
	mux.HandleFunc("POST /api/cart/add", auth.Authenticate(h.Cart.AddItem()))
	mux.HandleFunc("PUT /api/cart/update/{itemId}", auth.Authenticate(h.Cart.UpdateQuantity()))
	mux.HandleFunc("DELETE /api/cart/remove/{itemId}", auth.Authenticate(h.Cart.RemoveItem()))
	mux.HandleFunc("DELETE /api/cart/clear", auth.Authenticate(h.Cart.ClearCart()))

	// orders and payments
	mux.HandleFunc("POST /api/orders/create", auth.Authenticate(h.Order.CreateOrder()))
	mux.HandleFunc("GET /api/orders/user", auth.Authenticate(h.Order.ListOrders()))
	mux.HandleFunc("GET /api/orders/{id}", auth.Authenticate(h.Order.GetOrder()))
	mux.HandleFunc("POST /api/orders/{id}/cancel", auth.Authenticate(h.Order.CancelOrder()))
	mux.HandleFunc("POST /api/orders/{id}/pay", auth.Authenticate(h.Payment.CreatePaymentIntent()))
	mux.HandleFunc("GET /api/orders/{id}/invoice", auth.Authenticate(h.Order.Invoice()))
	mux.HandleFunc("POST /api/payments/webhook", h.Payment.HandleStripeWebhook())

	// notifications
	mux.HandleFunc("GET /api/notifications", auth.Authenticate(h.Notification.ListNotifications()))
	mux.HandleFunc("PATCH /api/notifications/read-all", auth.Authenticate(h.Notification.MarkAllAsRead()))
	mux.HandleFunc("PATCH /api/notifications/{id}/read", auth.Authenticate(h.Notification.MarkAsRead()))
	mux.HandleFunc("DELETE /api/notifications/{id}", auth.Authenticate(h.Notification.DeleteNotification()))

	// admin
	mux.HandleFunc("GET /api/admin/stats", admin(h.Admin.GetStats()))
	mux.HandleFunc("GET /api/admin/books", admin(h.Book.ListBooksForReview()))
	mux.HandleFunc("PATCH /api/admin/books/{id}/review", admin(h.Book.ReviewBook()))
	mux.HandleFunc("PATCH /api/admin/books/{id}/publish", admin(h.Book.PublishBook()))
	mux.HandleFunc("POST /api/admin/packages", admin(h.Package.CreatePackage()))
	mux.HandleFunc("PUT /api/admin/packages/{id}", admin(h.Package.UpdatePackage()))
	mux.HandleFunc("DELETE /api/admin/packages/{id}", admin(h.Package.DeactivatePackage()))
	mux.HandleFunc("POST /api/admin/events", admin(h.Event.CreateEvent()))
	mux.HandleFunc("PUT /api/admin/events/{id}", admin(h.Event.UpdateEvent()))
	mux.HandleFunc("DELETE /api/admin/events/{id}", admin(h.Event.DeleteEvent()))
	mux.HandleFunc("PATCH /api/admin/orders/{id}/status", admin(h.Order.UpdateOrderStatus()))

	mux.Handle("GET /metrics", metrics.Handler())
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	return mux
}

// Wrap applies the global chain, outermost first: tracing, CORS, rate limit,
// request logging, metrics.
func Wrap(mux *http.ServeMux, opts Options) http.Handler {

	if opts.Health != nil {
		mux.Handle("GET /health", opts.Health)
	}

	var handler http.Handler = mux
	handler = metrics.Middleware(handler)
	handler = middleware.Logging(handler)

	if opts.RateLimiter != nil {
		handler = opts.RateLimiter.Middleware(handler)
	}

	handler = middleware.CORS(opts.CORSOrigins)(handler)

	return otelhttp.NewHandler(handler, "zenjaura",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}
