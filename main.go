package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"

	_ "github.com/joho/godotenv/autoload"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"

	"github.com/vikt-quiz/vikt/internal/auth"
	"github.com/vikt-quiz/vikt/internal/cache"
	"github.com/vikt-quiz/vikt/internal/database"
	"github.com/vikt-quiz/vikt/internal/handlers"
	"github.com/vikt-quiz/vikt/internal/live"
)

func main() {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	// init db connection
	database.ConnectDB()
	defer database.DB.Close()

	ctx := context.Background()
	if err := database.EnsureSchema(ctx); err != nil {
		log.Fatalf("failed to ensure schema: %v", err)
	}

	gameStore := database.GameStateStore{}
	if err := gameStore.EnsureExists(ctx); err != nil {
		log.Fatalf("failed to seed game state: %v", err)
	}

	// init redis connection for question pools
	if err := cache.ConnectRedis(); err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}

	// init auth keys
	auth.Init()

	userStore := database.UserStore{}
	questionStore := database.QuestionStore{}
	answerLog := database.AnswerLog{}
	pool := cache.NewQuestionPool(cache.Rdb)

	orch := live.NewOrchestrator(gameStore, pool, questionStore, userStore, answerLog, logger)

	router := httprouter.New()
	router.GET("/", handlers.PingHandler)

	router.POST("/user/create", handlers.CreateUserHandler(logger, userStore))
	router.POST("/user/login", handlers.LoginHandler(logger, userStore))
	router.GET("/user/scores", handlers.ScoresHandler(logger, userStore))
	router.POST("/user/score", handlers.AddScoreHandler(logger, userStore, orch))
	router.DELETE("/user/:username", handlers.DeleteUserHandler(logger, userStore))
	router.POST("/user/reset", handlers.ResetUsersHandler(logger, userStore))

	router.POST("/question/add", handlers.AddQuestionsHandler(logger, questionStore))
	router.GET("/question/all", handlers.ListQuestionsHandler(logger, questionStore))
	router.GET("/question/section/:section", handlers.QuestionsBySectionHandler(logger, questionStore))
	router.GET("/question/info", handlers.QuestionInfoHandler(logger, questionStore))
	router.POST("/question/delete", handlers.DeleteQuestionHandler(logger, questionStore))
	router.POST("/question/reset", handlers.ResetQuestionsHandler(logger, questionStore))
	router.POST("/question/load/:section", handlers.LoadSectionPoolHandler(logger, orch))
	router.POST("/question/flush", handlers.FlushPoolsHandler(logger, orch))

	router.GET("/answer/all", handlers.ListAnswersHandler(logger, answerLog))
	router.POST("/answer/reset", handlers.ResetAnswersHandler(logger, answerLog))

	router.POST("/game/start", handlers.StartGameHandler(logger, orch))
	router.POST("/game/stop", handlers.StopGameHandler(logger, orch))
	router.POST("/game/advance", handlers.AdvanceHandler(logger, orch))
	router.POST("/game/next-section", handlers.NextSectionHandler(logger, orch))
	router.POST("/game/display-mode", handlers.DisplayModeHandler(logger, orch))
	router.POST("/game/timer", handlers.TimerHandler(logger, orch))
	router.POST("/game/reveal", handlers.RevealAnswerHandler(logger, orch))
	router.POST("/game/sections", handlers.SetSectionsHandler(logger, gameStore, orch))
	router.GET("/game/status", handlers.GameStatusHandler(logger, orch))

	router.HandlerFunc(http.MethodGet, "/ws/player", handlers.PlayerWSHandler(logger, orch))
	router.HandlerFunc(http.MethodGet, "/ws/spectator", handlers.SpectatorWSHandler(logger, orch))

	// No read/write timeouts: the websocket connections are long-lived
	// and manage their own deadlines.
	server := &http.Server{
		Handler: router,
	}

	l, err := net.Listen("tcp", fmt.Sprintf(":%s", os.Getenv("VIKT_SERVICE_PORT")))
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}

	logger.Infof("listening on %s", l.Addr())

	errc := make(chan error, 1)
	go func() {
		errc <- server.Serve(l)
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	select {
	case err := <-errc:
		logger.Errorf("failed to serve: %v", err)
	case sig := <-sigs:
		logger.Infof("terminating: %v", sig)
	}
}
