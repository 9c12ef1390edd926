package main // Entry point package

import (
	"context"
	"log"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	glog "github.com/labstack/gommon/log"

	"github.com/iliyamo/matchday-seat-client/internal/api"
	"github.com/iliyamo/matchday-seat-client/internal/booking"
	"github.com/iliyamo/matchday-seat-client/internal/config"
	"github.com/iliyamo/matchday-seat-client/internal/handler"
	"github.com/iliyamo/matchday-seat-client/internal/middleware"
	"github.com/iliyamo/matchday-seat-client/internal/model"
	"github.com/iliyamo/matchday-seat-client/internal/router"
	queue_publisher "github.com/iliyamo/matchday-seat-client/internal/service"
	"github.com/iliyamo/matchday-seat-client/internal/session"
)

func main() {
	config.LoadDotEnv()
	cfg := config.Load()
	rlCfg := config.LoadRateLimitConfig()
	cacheCfg := config.LoadCacheConfig()
	brokerCfg := config.LoadBrokerConfig()

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(logLevel(cfg.LogLevel))
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable: sessions and booking guard stay in memory, rate limit and cache are off")
	}

	client := api.New(cfg.BackendURL, api.WithTimeout(cfg.BackendTimeout))

	var store session.Backend = session.NewMemoryBackend()
	var guard booking.Guard = booking.NewMemoryGuard()
	if rdb != nil {
		store = session.NewRedisBackend(rdb, "")
		guard = booking.NewRedisGuard(rdb, "", 0)
	}
	sessions := session.NewAccessor(
		session.NewCookieStore(cfg.SessionSecret, cfg.SessionTTL, cfg.CookieSecure),
		cfg.SessionName, store, cfg.SessionTTL)

	var recorder booking.AttemptRecorder = queue_publisher.LogRecorder{}
	if brokerCfg.Enabled {
		recorder = queue_publisher.NewAttemptPublisher(brokerCfg.URL, brokerCfg.Queue)
		log.Printf("reserve attempts published to %q", brokerCfg.Queue)
	}

	seats := booking.NewPool(cfg.SeatPoolTTL, func(matchID uint64, s session.Session) *booking.Controller {
		c := client
		if s.AccessToken != "" {
			c = client.WithToken(s.AccessToken)
		}
		return booking.NewController(matchID, s, c,
			booking.WithGuard(guard),
			booking.WithRecorder(recorder),
			booking.WithPaymentMethod(cfg.PaymentMethod),
			booking.WithPages(router.LoginPage, router.CompletePage),
		)
	})

	userInfo := func(ctx context.Context, token string) (model.Identity, error) {
		return client.WithToken(token).UserInfo(ctx)
	}
	e.Use(middleware.LoadSession(sessions, userInfo))

	limit := middleware.NewTokenBucket(rlCfg, rdb)
	cache := middleware.NewRedisCache(cacheCfg, rdb)

	router.RegisterRoutes(e, handler.NewHealthHandler(rdb))
	router.RegisterAuth(e, handler.NewAuthHandler(client, sessions, seats), limit)
	router.RegisterBooking(e,
		handler.NewMatchHandler(client),
		handler.NewSeatHandler(seats),
		handler.NewCompleteHandler(cfg.PublicURL),
		cache, limit)
	router.RegisterMyPage(e, handler.NewMyPageHandler(client), middleware.RequireLogin(router.LoginPage), limit)
	router.RegisterAdmin(e, handler.NewAdminHandler(client), middleware.RequireAdmin(router.AdminLoginPage))

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, backend=%s)", addr, cfg.Env, client.BaseURL())
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

func logLevel(s string) glog.Lvl {
	switch s {
	case "debug":
		return glog.DEBUG
	case "warn":
		return glog.WARN
	case "error":
		return glog.ERROR
	case "off":
		return glog.OFF
	}
	return glog.INFO
}
