package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bufbuild/httplb"
	"github.com/joho/godotenv"

	"taskboard-backend/internal/api"
	"taskboard-backend/internal/api/middleware/mwauth"
	"taskboard-backend/internal/api/rauth"
	"taskboard-backend/internal/api/rboard"
	"taskboard-backend/internal/api/rcard"
	"taskboard-backend/internal/api/rchecklist"
	"taskboard-backend/internal/api/rlane"
	"taskboard-backend/internal/api/ruser"
	"taskboard-backend/internal/api/rwebhook"
	"taskboard-backend/pkg/db"
	"taskboard-backend/pkg/lineauth"
	"taskboard-backend/pkg/linemsg"
	"taskboard-backend/pkg/notify"
	"taskboard-backend/pkg/service/sboard"
	"taskboard-backend/pkg/service/scard"
	"taskboard-backend/pkg/service/schecklist"
	"taskboard-backend/pkg/service/slane"
	"taskboard-backend/pkg/service/suser"
)

func main() {
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)

	ctx := context.Background()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// .env is optional; real deployments set env vars directly.
	_ = godotenv.Load()

	// Environment variables
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	hmacSecret := os.Getenv("HMAC_SECRET")
	if hmacSecret == "" {
		log.Fatal(errors.New("HMAC_SECRET env var is required"))
	}
	hmacSecretBytes := []byte(hmacSecret)

	appURL := os.Getenv("APP_URL")
	if appURL == "" {
		log.Fatal(errors.New("APP_URL env var is required"))
	}
	secureCookies := os.Getenv("APP_ENV") == "production"

	dbMode := os.Getenv("DB_MODE")
	if dbMode == "" {
		dbMode = db.LOCAL
	}
	fmt.Println("DB_MODE: ", dbMode)

	var conn *sql.DB
	var err error
	switch dbMode {
	case db.LOCAL:
		conn, err = GetDBLocal()
	case db.REMOTE:
		conn, err = GetDBRemote()
	default:
		err = errors.New("invalid db mode")
	}
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()
	if err := db.Init(conn); err != nil {
		log.Fatal(err)
	}

	clientHTTP := httplb.NewClient(httplb.WithDefaultTimeout(30 * time.Second))
	defer clientHTTP.Close()

	lineLoginCfg := lineauth.Config{
		ChannelID:     os.Getenv("LINE_LOGIN_CHANNEL_ID"),
		ChannelSecret: os.Getenv("LINE_LOGIN_CHANNEL_SECRET"),
		RedirectURL:   appURL + "/api/auth/line",
	}
	if lineLoginCfg.ChannelID == "" || lineLoginCfg.ChannelSecret == "" {
		log.Fatal(errors.New("LINE_LOGIN_CHANNEL_ID and LINE_LOGIN_CHANNEL_SECRET env vars are required"))
	}
	lineLogin := lineauth.New(lineLoginCfg, clientHTTP)

	lineChannelSecret := os.Getenv("LINE_CHANNEL_SECRET")
	lineChannelToken := os.Getenv("LINE_CHANNEL_ACCESS_TOKEN")
	if lineChannelSecret == "" || lineChannelToken == "" {
		log.Fatal(errors.New("LINE_CHANNEL_SECRET and LINE_CHANNEL_ACCESS_TOKEN env vars are required"))
	}
	lineBot, err := linemsg.New(lineChannelSecret, lineChannelToken)
	if err != nil {
		log.Fatal(err)
	}

	dispatcher := notify.NewDispatcher(lineBot, 64)
	go dispatcher.Run(ctx)

	bs := sboard.New(conn)
	ls := slane.New(conn)
	cs := scard.New(conn)
	chs := schecklist.New(conn)
	us := suser.New(conn)

	authMW := mwauth.NewAuthMiddleware(hmacSecretBytes)

	// Services HTTP
	newServiceManager := NewServiceManager(10)

	// Auth Service
	authSrv := rauth.New(lineLogin, us, hmacSecretBytes, appURL, secureCookies)
	newServiceManager.AddService(rauth.CreateService(authSrv))

	// Board Service
	boardSrv := rboard.New(conn, bs, ls, cs, chs, us)
	newServiceManager.AddService(rboard.CreateService(boardSrv, authMW))
	newServiceManager.AddService(rboard.CreateItemService(boardSrv, authMW))

	// Lane Service
	laneSrv := rlane.New(conn, ls, bs)
	newServiceManager.AddService(rlane.CreateService(laneSrv, authMW))

	// Card Service
	cardSrv := rcard.New(conn, cs, ls, chs, us)
	newServiceManager.AddService(rcard.CreateService(cardSrv, authMW))

	// Checklist Service
	checklistSrv := rchecklist.New(conn, chs, cs, us, dispatcher)
	newServiceManager.AddService(rchecklist.CreateService(checklistSrv, authMW))

	// User Service
	userSrv := ruser.New(us)
	newServiceManager.AddService(ruser.CreateService(userSrv, authMW))

	// Webhook Service
	webhookSrv := rwebhook.New(lineBot, lineBot, us, chs)
	newServiceManager.AddService(rwebhook.CreateService(webhookSrv))

	// Start services
	go func() {
		err := api.ListenServices(newServiceManager.GetServices(), port)
		if err != nil {
			log.Fatal(err)
		}
	}()

	// Wait for signal
	<-sc
}

type ServiceManager struct {
	s []api.Service
}

// size is not max size, but initial allocation size for the slice
func NewServiceManager(size int) *ServiceManager {
	return &ServiceManager{
		s: make([]api.Service, 0, size),
	}
}

func (sm *ServiceManager) AddService(s *api.Service, e error) {
	if e != nil {
		log.Fatalf("error: %v on %s", e, s.Path)
	}
	if s == nil {
		log.Fatalf("service is nil on %d", len(sm.s))
	}
	sm.s = append(sm.s, *s)
}

func (sm *ServiceManager) GetServices() []api.Service {
	return sm.s
}

func GetDBLocal() (*sql.DB, error) {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		return nil, errors.New("DB_PATH env var is required")
	}
	return db.NewLocal(dbPath)
}

func GetDBRemote() (*sql.DB, error) {
	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		return nil, errors.New("DB_NAME env var is required")
	}
	dbUsername := os.Getenv("DB_USERNAME")
	if dbUsername == "" {
		return nil, errors.New("DB_USERNAME env var is required")
	}
	dbToken := os.Getenv("DB_TOKEN")
	if dbToken == "" {
		return nil, errors.New("DB_TOKEN env var is required")
	}
	return db.NewRemote(dbName, dbUsername, dbToken)
}
