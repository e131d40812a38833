package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noormart/noormart-backend/api/controllers"
	"github.com/noormart/noormart-backend/api/middleware"
	"github.com/noormart/noormart-backend/internal/address"
	"github.com/noormart/noormart-backend/internal/cart"
	"github.com/noormart/noormart-backend/internal/catalog"
	checkoutsvc "github.com/noormart/noormart-backend/internal/checkout"
	"github.com/noormart/noormart-backend/internal/delivery"
	"github.com/noormart/noormart-backend/internal/orders"
	"github.com/noormart/noormart-backend/pkg/config"
	"github.com/noormart/noormart-backend/pkg/db"
	"github.com/noormart/noormart-backend/pkg/logger"
	"github.com/noormart/noormart-backend/pkg/redis"
)

// Deps collects everything the HTTP surface needs.
type Deps struct {
	Config    *config.Config
	Logger    *logger.Logger
	DB        db.Pinger
	Redis     *redis.Client
	Registry  *prometheus.Registry
	Catalog   catalog.Service
	Cart      cart.Service
	Checkout  checkoutsvc.Service
	Orders    orders.Service
	Addresses address.Service
	Delivery  delivery.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	// Public storefront reads.
	r.Route("/api/v1/catalog", func(r chi.Router) {
		r.Get("/products/{productID}", controllers.ProductGet(deps.Catalog, logg))
		r.Get("/variants/{variantID}", controllers.VariantGet(deps.Catalog, logg))
		r.Get("/categories", controllers.CategoryTree(deps.Catalog, logg))
	})
	r.Get("/api/v1/delivery-settings", controllers.DeliverySettingsGet(deps.Delivery, logg))

	// Buyer surface; identity comes from the gateway header.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.UserContext(logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(deps.Cart, logg))
			r.Post("/items", controllers.CartAddItem(deps.Cart, logg))
			r.Put("/items/{variantID}", controllers.CartSetItemQuantity(deps.Cart, logg))
			r.Delete("/items/{variantID}", controllers.CartRemoveItem(deps.Cart, logg))
			r.Delete("/", controllers.CartClear(deps.Cart, logg))
		})

		r.Route("/checkouts", func(r chi.Router) {
			r.Post("/", controllers.CheckoutCreate(deps.Checkout, logg))
			r.Get("/{checkoutID}", controllers.CheckoutGet(deps.Checkout, logg))
			r.Put("/{checkoutID}/address", controllers.CheckoutSetAddress(deps.Checkout, logg))
			r.Put("/{checkoutID}/payment-method", controllers.CheckoutSetPaymentMethod(deps.Checkout, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.OrderConfirm(deps.Orders, logg))
			r.Get("/", controllers.OrderList(deps.Orders, logg))
			r.Get("/{orderID}", controllers.OrderGet(deps.Orders, logg))
		})

		r.Route("/addresses", func(r chi.Router) {
			r.Get("/", controllers.AddressList(deps.Addresses, logg))
			r.Post("/", controllers.AddressCreate(deps.Addresses, logg))
			r.Put("/{addressID}", controllers.AddressUpdate(deps.Addresses, logg))
			r.Delete("/{addressID}", controllers.AddressDelete(deps.Addresses, logg))
		})
	})

	// Back-office surface. Authorization is enforced at the gateway;
	// these routes are not reachable from the public ingress.
	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Post("/products", controllers.ProductCreate(deps.Catalog, logg))
		r.Post("/categories", controllers.CategoryCreate(deps.Catalog, logg))
		r.Post("/variants/{variantID}/stock", controllers.VariantAdjustStock(deps.Catalog, logg))
		r.Put("/orders/{orderID}/status", controllers.OrderUpdateStatus(deps.Orders, logg))
		r.Post("/delivery-settings", controllers.DeliverySettingsActivate(deps.Delivery, logg))
		r.Get("/delivery-settings/history", controllers.DeliverySettingsHistory(deps.Delivery, logg))
	})

	return r
}
