package services

import (
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/scenecraft/scenecraft/internal/config"
	"github.com/scenecraft/scenecraft/internal/db"
	"github.com/scenecraft/scenecraft/internal/ratelimit"
	"github.com/scenecraft/scenecraft/internal/services/asset"
	"github.com/scenecraft/scenecraft/internal/services/project"
	"github.com/scenecraft/scenecraft/internal/services/scene"
	"github.com/scenecraft/scenecraft/internal/services/styletemplate"
	"github.com/scenecraft/scenecraft/internal/telemetry"
	"github.com/scenecraft/scenecraft/pkg/genai/orchestrator"
)

type Services struct {
	Project       *project.ProjectService
	Scene         *scene.SceneService
	Asset         *asset.AssetService
	StyleTemplate *styletemplate.StyleTemplateService

	Orchestrator *orchestrator.Orchestrator
	Limiter      ratelimit.Limiter
	Telemetry    *telemetry.Emitter
}

func NewServices(conf *config.Config) *Services {
	dbconn := db.NewConn(conf)

	assetDataPath := conf.ASSET_DATA_PATH
	if err := os.MkdirAll(assetDataPath, 0755); err != nil {
		slog.Warn("Failed to create asset data directory", slog.String("path", assetDataPath), slog.Any("error", err))
	}

	windowLen := time.Duration(conf.RATE_LIMIT_WINDOW_SECONDS) * time.Second

	var limiter ratelimit.Limiter
	if conf.REDIS_ADDR != "" {
		limiter = ratelimit.NewRedisLimiter(
			redis.NewClient(&redis.Options{
				Addr:     conf.REDIS_ADDR,
				Password: conf.REDIS_PASSWORD,
			}),
			"", windowLen, conf.RATE_LIMIT_MAX_REQUESTS,
		)
		slog.Info("Using Redis rate limiter", slog.String("addr", conf.REDIS_ADDR))
	} else {
		limiter = ratelimit.NewInMemoryLimiter(windowLen, conf.RATE_LIMIT_MAX_REQUESTS)
	}

	emitter := telemetry.NewEmitter(conf.TELEMETRY_ENABLED, nil)
	if conf.TELEMETRY_ENABLED && conf.CLICKHOUSE_HOST != "" {
		conn, err := telemetry.NewClickHouseConn(&telemetry.ClickHouseConfig{
			Host:     conf.CLICKHOUSE_HOST,
			Port:     conf.CLICKHOUSE_PORT,
			Database: conf.CLICKHOUSE_DATABASE,
			Username: conf.CLICKHOUSE_USERNAME,
			Password: conf.CLICKHOUSE_PASSWORD,
			UseTLS:   conf.CLICKHOUSE_USE_TLS,
		})
		if err != nil {
			slog.Warn("Failed to connect to ClickHouse for telemetry", slog.Any("error", err))
		} else {
			emitter = telemetry.NewEmitter(true, conn)
			slog.Info("Connected to ClickHouse for telemetry")
		}
	}

	return &Services{
		Project:       project.NewProjectService(project.NewProjectRepo(dbconn)),
		Scene:         scene.NewSceneService(scene.NewSceneRepo(dbconn)),
		Asset:         asset.NewAssetService(asset.NewAssetRepo(dbconn), asset.NewDiskBlobStore(assetDataPath)),
		StyleTemplate: styletemplate.NewStyleTemplateService(styletemplate.NewStyleTemplateRepo(dbconn)),

		Orchestrator: orchestrator.New(orchestrator.Options{
			ServerKey:    conf.GEMINI_API_KEY,
			PollInterval: time.Duration(conf.VIDEO_POLL_INTERVAL_SECONDS) * time.Second,
			PollTimeout:  time.Duration(conf.VIDEO_POLL_TIMEOUT_SECONDS) * time.Second,
		}),
		Limiter:   limiter,
		Telemetry: emitter,
	}
}
