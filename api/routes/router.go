package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rmartinelli/shopcart-backend/api/controllers"
	"github.com/rmartinelli/shopcart-backend/api/middleware"
	"github.com/rmartinelli/shopcart-backend/internal/auth"
	"github.com/rmartinelli/shopcart-backend/internal/categories"
	"github.com/rmartinelli/shopcart-backend/internal/coupons"
	"github.com/rmartinelli/shopcart-backend/internal/deliveries"
	"github.com/rmartinelli/shopcart-backend/internal/orders"
	"github.com/rmartinelli/shopcart-backend/internal/products"
	"github.com/rmartinelli/shopcart-backend/internal/users"
	"github.com/rmartinelli/shopcart-backend/pkg/config"
	"github.com/rmartinelli/shopcart-backend/pkg/db"
	"github.com/rmartinelli/shopcart-backend/pkg/logger"
	"github.com/rmartinelli/shopcart-backend/pkg/metrics"
	"github.com/rmartinelli/shopcart-backend/pkg/redis"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config          *config.Config
	Logger          *logger.Logger
	DB              db.Pinger
	Redis           *redis.Client
	HTTPMetrics     *metrics.HTTPMetrics
	MetricsGatherer http.Handler
	ImageStore      products.ImageStore

	AuthService     auth.Service
	UserService     users.Service
	CategoryService categories.Service
	ProductService  products.Service
	CouponService   coupons.Service
	OrderService    orders.Service
	DeliveryService deliveries.Service
}

// NewRouter assembles the HTTP surface.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	var limiter func(http.Handler) http.Handler
	if deps.Redis != nil {
		limiter = middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)
	} else {
		limiter = func(next http.Handler) http.Handler { return next }
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, redisPinger(deps.Redis)))
	})

	if deps.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsGatherer)
	} else {
		r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	}

	r.With(limiter).Post("/login", controllers.AuthLogin(deps.AuthService, logg))

	r.Route("/users", func(r chi.Router) {
		r.Get("/", controllers.ListUsers(deps.UserService, logg))
		r.Post("/", controllers.CreateUser(deps.UserService, logg))
		r.Delete("/{userId}", controllers.DeleteUser(deps.UserService, logg))
	})

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", controllers.ListCategories(deps.CategoryService, logg))
		r.Post("/", controllers.CreateCategory(deps.CategoryService, logg))
		r.Get("/{categoryId}", controllers.GetCategory(deps.CategoryService, logg))
		r.Put("/{categoryId}", controllers.UpdateCategory(deps.CategoryService, logg))
		r.Delete("/{categoryId}", controllers.DeleteCategory(deps.CategoryService, logg))
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", controllers.ListProducts(deps.ProductService, logg))
		r.Post("/", controllers.CreateProduct(deps.ProductService, logg))
		r.Post("/check-stock", controllers.CheckStock(deps.ProductService, logg))
		r.Get("/{productId}", controllers.GetProduct(deps.ProductService, logg))
		r.Put("/{productId}", controllers.UpdateProduct(deps.ProductService, logg))
		r.Delete("/{productId}", controllers.DeleteProduct(deps.ProductService, logg))
		r.Patch("/{productId}/delivery-status", controllers.UpdateProductDeliveryStatus(deps.DeliveryService, logg))
	})

	if deps.ImageStore != nil {
		r.Post("/upload", controllers.UploadImage(deps.ImageStore, logg))
	}

	r.Route("/coupons", func(r chi.Router) {
		r.Get("/", controllers.ListCoupons(deps.CouponService, logg))
		r.Post("/", controllers.CreateCoupon(deps.CouponService, logg))
		r.Post("/validate", controllers.ValidateCoupon(deps.CouponService, logg))
		r.Get("/{code}", controllers.GetCoupon(deps.CouponService, logg))
		r.Put("/{couponId}", controllers.UpdateCoupon(deps.CouponService, logg))
		r.Delete("/{couponId}", controllers.DeleteCoupon(deps.CouponService, logg))
	})

	r.Route("/orders", func(r chi.Router) {
		r.Get("/", controllers.ListOrders(deps.OrderService, logg))
		r.Post("/", controllers.PlaceOrder(deps.OrderService, logg))
		r.Route("/{orderNumber}", func(r chi.Router) {
			r.Get("/", controllers.GetOrder(deps.OrderService, logg))
			r.Patch("/status", controllers.UpdateOrderStatus(deps.OrderService, logg))
			r.Post("/payment", controllers.AddOrderPayment(deps.OrderService, logg))
			r.Patch("/items/{itemId}/status", controllers.UpdateOrderItemStatus(deps.OrderService, logg))
			r.Post("/delivery", controllers.CreateDelivery(deps.DeliveryService, logg))
		})
	})

	r.Route("/deliveries", func(r chi.Router) {
		r.Get("/", controllers.ListDeliveries(deps.DeliveryService, logg))
		r.Get("/{deliveryId}", controllers.GetDelivery(deps.DeliveryService, logg))
		r.Post("/{deliveryId}/events", controllers.AddDeliveryEvent(deps.DeliveryService, logg))
	})

	r.Get("/track/{trackingNumber}", controllers.TrackDelivery(deps.DeliveryService, logg))

	if cfg.Uploads.Dir != "" {
		fileServer := http.StripPrefix(cfg.Uploads.PublicBase, http.FileServer(http.Dir(cfg.Uploads.Dir)))
		r.Get(cfg.Uploads.PublicBase+"/*", func(w http.ResponseWriter, r *http.Request) {
			fileServer.ServeHTTP(w, r)
		})
	}

	return r
}

// redisPinger narrows the optional client to its health-check surface
// without turning a nil pointer into a non-nil interface.
func redisPinger(client *redis.Client) redis.Pinger {
	if client == nil {
		return nil
	}
	return client
}
