package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/admitlink/admitlink/internal/admin"
	"github.com/admitlink/admitlink/internal/alerts"
	"github.com/admitlink/admitlink/internal/auth"
	"github.com/admitlink/admitlink/internal/billing"
	"github.com/admitlink/admitlink/internal/checkout"
	"github.com/admitlink/admitlink/internal/config"
	"github.com/admitlink/admitlink/internal/db"
	"github.com/admitlink/admitlink/internal/earnings"
	"github.com/admitlink/admitlink/internal/events"
	appmw "github.com/admitlink/admitlink/internal/middleware"
	"github.com/admitlink/admitlink/internal/offer"
	"github.com/admitlink/admitlink/internal/order"
	"github.com/admitlink/admitlink/internal/payment"
	"github.com/admitlink/admitlink/internal/review"
	"github.com/admitlink/admitlink/internal/university"
	"github.com/admitlink/admitlink/internal/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		users        user.Repository
		offers       offer.Repository
		orders       order.Repository
		reviews      review.Repository
		universities university.Repository
		eventStore   payment.EventStore
		gateway      payment.Gateway
		offerCache   *offer.Cache
	)

	var notifier order.Notifier
	var authNotifier auth.Notifier
	var failureNotifier payment.FailureNotifier
	var sink order.EventSink

	if cfg.DemoMode {
		log.Println("[server] demo mode: in-memory stores, fake payment gateway")
		mu := user.NewMemoryRepository()
		mo := offer.NewMemoryRepository()
		users, offers = mu, mo
		orders = order.NewMemoryRepository()
		reviews = review.NewMemoryRepository()
		universities = university.NewMemoryRepository(demoUniversities())
		eventStore = payment.NewMemoryEventStore()
		gateway = payment.DemoGateway{}
		seedDemo(ctx, mu, mo)
	} else {
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("db connect: %v", err)
		}
		defer pool.Close()
		if err := db.EnsureSchema(ctx, pool); err != nil {
			log.Fatalf("db schema: %v", err)
		}

		users = user.NewPgRepository(pool)
		offers = offer.NewPgRepository(pool)
		orders = order.NewPgRepository(pool)
		reviews = review.NewRepository(pool)
		universities = university.NewRepository(pool)
		eventStore = payment.NewPgEventStore(pool)
		gateway = payment.NewClient(cfg.PaymentAPIURL, cfg.PaymentSecretKey)

		if cfg.RedisAddr != "" {
			rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
			offerCache = offer.NewCache(rdb)

			if err := alerts.ConfigureMailerFromEnv(); err != nil {
				log.Printf("[server] mailer not configured, emails will fail: %v", err)
			}
			alerts.Init(cfg.RedisAddr)
			defer alerts.Close()
			n := alerts.NewNotifier(users, cfg.AppURL)
			notifier, authNotifier, failureNotifier = n, n, n
		}

		if len(cfg.KafkaBrokers) > 0 {
			producer := events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, 256)
			producer.Start(ctx)
			defer producer.WaitClosed()
			sink = producer
		}
	}

	calc := billing.NewCalculator(cfg.CommissionRate)
	orderSvc := order.NewService(orders, gateway, notifier, sink, cfg.AutoCompleteAfter)
	checkoutSvc := checkout.NewService(offers, gateway, calc, cfg.AppURL)

	authH := auth.NewHandler(users, []byte(cfg.JWTSecret), cfg.JWTExpiry, cfg.AppURL, authNotifier)
	userH := user.NewHandler(users)
	offerH := offer.NewHandler(offers, offerCache)
	orderH := order.NewHandler(orderSvc)
	checkoutH := checkout.NewHandler(checkoutSvc)
	reviewH := review.NewHandler(reviews, orders)
	universityH := university.NewHandler(universities)
	earningsH := earnings.NewHandler(orders)
	adminH := admin.NewHandler(users, orders, orderSvc)
	webhookH := payment.NewWebhookHandler(
		[]byte(cfg.PaymentWebhookSecret), cfg.WebhookTolerance,
		eventStore, orderSvc, calc, failureNotifier,
	)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	// Health
	e.GET("/health", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	// Public routes; auth endpoints are rate limited per IP
	authLimit := echomw.RateLimiter(echomw.NewRateLimiterMemoryStore(10))
	e.POST("/signup", authH.Signup, authLimit)
	e.POST("/login", authH.Login, authLimit)
	e.POST("/password-reset/request", authH.RequestPasswordReset, authLimit)
	e.POST("/password-reset/confirm", authH.ConfirmPasswordReset, authLimit)
	e.GET("/users/:id/profile", userH.GetPublicProfile)
	e.GET("/offers", offerH.List)
	e.GET("/offers/:id", offerH.Get)
	e.GET("/sellers/:id/reviews", reviewH.ListForSeller)
	e.GET("/universities", universityH.List)
	e.GET("/universities/:id", universityH.Get)

	// Payment gateway callback, authenticated by signature
	e.POST("/webhooks/payment", webhookH.Handle)

	// Authenticated group
	g := e.Group("")
	g.Use(appmw.JWT([]byte(cfg.JWTSecret)))

	g.GET("/me", authH.Me)
	g.PATCH("/users/profile", userH.UpdateProfile)

	// Offers
	g.POST("/offers", offerH.Create, appmw.RequireRoles(user.RoleStudent))
	g.GET("/offers/mine/list", offerH.ListMine)
	g.PATCH("/offers/:id", offerH.Update)
	g.POST("/offers/:id/pause", offerH.Pause)
	g.POST("/offers/:id/resume", offerH.Resume)

	// Checkout and orders
	g.POST("/checkout", checkoutH.Create)
	g.GET("/orders", orderH.ListMine)
	g.GET("/orders/:id", orderH.Get)
	g.POST("/orders/:id/deliver", orderH.Deliver)
	g.POST("/orders/:id/complete", orderH.Complete)

	// Reviews
	g.POST("/orders/:id/review", reviewH.Create)
	g.GET("/orders/:id/review", reviewH.GetForOrder)

	// Earnings
	g.GET("/earnings", earningsH.Mine, appmw.RequireRoles(user.RoleStudent))

	// Admin routes
	adminGroup := e.Group("/admin")
	adminGroup.Use(appmw.JWT([]byte(cfg.JWTSecret)))
	adminGroup.Use(appmw.AdminGuard)
	adminGroup.GET("/stats", adminH.Stats)
	adminGroup.GET("/orders", adminH.ListOrders)
	adminGroup.POST("/orders/:id/cancel", adminH.CancelOrder)
	adminGroup.POST("/orders/:id/refund", adminH.RefundOrder)
	adminGroup.POST("/orders/:id/complete", adminH.CompleteOrder)
	adminGroup.GET("/users", adminH.ListUsers)
	adminGroup.POST("/users/:id/suspend", adminH.SuspendUser)
	adminGroup.POST("/users/:id/activate", adminH.ActivateUser)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = e.Shutdown(shutdownCtx)
	}()

	log.Printf("API server listening on :%s", cfg.Port)
	if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

// seedDemo loads a small fixture set so the app is browsable out of the box.
func seedDemo(ctx context.Context, users *user.MemoryRepository, offers *offer.MemoryRepository) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("demo1234"), bcrypt.DefaultCost)
	now := time.Now()

	fixtures := []user.User{
		{ID: "11111111-1111-1111-1111-111111111111", Email: "mara@demo.admitlink.io", Name: "Mara Jensen", Role: user.RoleStudent, University: "ETH Zurich", StudyProgram: "Computer Science", Country: "CH", IsVerified: true},
		{ID: "22222222-2222-2222-2222-222222222222", Email: "tomas@demo.admitlink.io", Name: "Tomas Berg", Role: user.RoleStudent, University: "TU Delft", StudyProgram: "Aerospace Engineering", Country: "NL", IsVerified: true},
		{ID: "33333333-3333-3333-3333-333333333333", Email: "aisha@demo.admitlink.io", Name: "Aisha Rahman", Role: user.RoleApplicant, Country: "BD"},
		{ID: "44444444-4444-4444-4444-444444444444", Email: "admin@demo.admitlink.io", Name: "Demo Admin", Role: user.RoleAdmin},
	}
	for i := range fixtures {
		u := fixtures[i]
		u.PasswordHash = string(hash)
		u.IsActive = true
		u.CreatedAt = now
		if err := users.Create(ctx, &u); err != nil {
			log.Printf("[server] demo seed user %s: %v", u.Email, err)
		}
	}

	offerFixtures := []offer.Offer{
		{ID: "aaaaaaaa-0000-0000-0000-000000000001", OwnerID: "11111111-1111-1111-1111-111111111111", Title: "Essay review for CS programs", Description: "Detailed written feedback on your motivation letter within 3 days.", Type: offer.TypeWrittenReview, PriceCents: 2500, DeliveryDays: 3},
		{ID: "aaaaaaaa-0000-0000-0000-000000000002", OwnerID: "11111111-1111-1111-1111-111111111111", Title: "30 minute video call", Description: "Ask me anything about studying CS at ETH.", Type: offer.TypeVideoCall, PriceCents: 4000, DeliveryDays: 7},
		{ID: "aaaaaaaa-0000-0000-0000-000000000003", OwnerID: "22222222-2222-2222-2222-222222222222", Title: "Chat session about TU Delft admissions", Description: "A week of async chat about the application process.", Type: offer.TypeChatSession, PriceCents: 1500, DeliveryDays: 7},
	}
	for i := range offerFixtures {
		o := offerFixtures[i]
		o.IsActive = true
		o.CreatedAt = now
		o.UpdatedAt = now
		if err := offers.Create(ctx, &o); err != nil {
			log.Printf("[server] demo seed offer %s: %v", o.Title, err)
		}
	}
}

func demoUniversities() []university.University {
	return []university.University{
		{ID: "u-eth", Name: "ETH Zurich", Country: "CH", City: "Zurich", Website: "https://ethz.ch"},
		{ID: "u-delft", Name: "TU Delft", Country: "NL", City: "Delft", Website: "https://tudelft.nl"},
		{ID: "u-tum", Name: "Technical University of Munich", Country: "DE", City: "Munich", Website: "https://tum.de"},
		{ID: "u-kth", Name: "KTH Royal Institute of Technology", Country: "SE", City: "Stockholm", Website: "https://kth.se"},
	}
}
