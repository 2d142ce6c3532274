package main

import (
	"os"
	"time"

	"cafeorders/internal/catalog"
	"cafeorders/internal/config"
	"cafeorders/internal/domain/model"
	"cafeorders/internal/handler"
	"cafeorders/internal/infra/db"
	infraRepo "cafeorders/internal/infra/repository"
	"cafeorders/internal/middleware"
	"cafeorders/internal/server"
	"cafeorders/internal/usecase"
	"cafeorders/internal/validator"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

func main() {
	//Logger
	zerolog.TimeFieldFormat = time.RFC3339
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()

	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("no .env file, using process env")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("config load failed")
	}

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("db connect failed")
	}
	if err := gormDB.AutoMigrate(&model.Order{}); err != nil {
		logger.Fatal().Err(err).Msg("migrate failed")
	}
	// 1テーブル1アクティブ注文をストア側でも強制（同時リクエスト対策）
	if err := gormDB.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_active_table
		 ON orders (table_number) WHERE status IN ('waiting', 'ready')`,
	).Error; err != nil {
		logger.Fatal().Err(err).Msg("index creation failed")
	}

	//Repository（GORM実装）生成
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//usecaseに渡す部品
	dishes := catalog.NewFileProvider(cfg.CatalogPath)
	clock := &realClock{}

	//Usecase生成
	orderUC := usecase.NewOrderUsecase(txManager, dishes, clock)
	revenueUC := usecase.NewRevenueUsecase(orderRepo, dishes, clock)

	//Validator生成
	orderV := validator.NewOrderValidator(orderRepo, dishes)

	//Handler生成
	orderH := handler.NewOrderHandler(orderUC, orderV)
	revenueH := handler.NewRevenueHandler(revenueUC)
	formH := handler.NewFormHandler(orderUC, revenueUC, orderV)

	//Server起動
	e := server.New()
	e.Use(middleware.RequestLogger(logger))
	server.RegisterRoutes(e, orderH, revenueH, formH)

	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}

	logger.Info().
		Str("addr", addr).
		Str("catalog", cfg.CatalogPath).
		Msg("starting cafe order service")

	if err := server.Start(e, addr); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
