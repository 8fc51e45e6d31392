package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resume-match-go/internal/api/handler"
	"resume-match-go/internal/api/router"
	"resume-match-go/internal/config"
	appCoreLogger "resume-match-go/internal/logger"
	"resume-match-go/internal/matcher"
	"resume-match-go/internal/parser"
	"resume-match-go/internal/storage"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	glog "github.com/cloudwego/hertz/pkg/common/hlog"
	hertzadapter "github.com/hertz-contrib/logger/zerolog"
	"github.com/spf13/pflag"
)

func main() {
	var configPath string
	pflag.StringVarP(&configPath, "config", "c", "", "配置文件路径")
	pflag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	initLogger(cfg)
	glog.Info("配置加载成功")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	storageManager, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		glog.Fatalf("初始化存储失败: %v", err)
	}
	defer storageManager.Close()
	glog.Info("存储服务初始化成功")

	var pdfLogger *log.Logger
	if cfg.Logger.Level == "debug" {
		pdfLogger = log.New(os.Stderr, "[EinoPDF] ", log.LstdFlags|log.Lshortfile)
	} else {
		pdfLogger = log.New(io.Discard, "", 0)
	}

	extractTimeout := config.GetDuration(cfg.Matcher.ExtractTimeout, 30*time.Second)

	pdfExtractor, err := parser.NewEinoPDFTextExtractor(ctx,
		parser.WithEinoLogger(pdfLogger),
		parser.WithEinoTimeout(extractTimeout),
	)
	if err != nil {
		glog.Fatalf("创建PDF提取器失败: %v", err)
	}
	glog.Info("PDF提取器初始化成功")

	docxExtractor := parser.NewDocxTextExtractor(parser.WithDocxLogger(pdfLogger))

	textExtractor := matcher.NewTextExtractor(storageManager.Files, storageManager.Cache, pdfExtractor, docxExtractor)

	engine := matcher.NewEngine(storageManager, textExtractor,
		matcher.WithMaxWorkers(cfg.Matcher.MaxWorkers),
		matcher.WithExtractTimeout(extractTimeout),
	)
	glog.Info("匹配引擎初始化成功")

	resumeHandler := handler.NewResumeHandler(cfg, storageManager, engine)

	h := server.New(
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
	)
	h.Use(func(c context.Context, ctx *app.RequestContext) {
		glog.CtxInfof(c, "Request: %s %s", string(ctx.Method()), string(ctx.Path()))
		ctx.Next(c)
		glog.CtxInfof(c, "Response: status %d", ctx.Response.StatusCode())
	})

	router.RegisterRoutes(h, resumeHandler)
	glog.Info("HTTP路由注册成功")

	glog.Infof("HTTP 服务器启动中，监听地址: %s", cfg.Server.Address)

	go func() {
		if err := h.Run(); err != nil {
			glog.Fatalf("启动HTTP服务器失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	glog.Info("接收到终止信号，正在优雅退出...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := h.Shutdown(shutdownCtx); err != nil {
		glog.Fatalf("服务器关闭失败: %v", err)
	}
	glog.Info("优雅退出完成")
}

// initLogger 按配置初始化zerolog，并把Hertz的hlog桥接到同一个输出
func initLogger(cfg *config.Config) {
	logConfig := appCoreLogger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
	}
	appCoreLogger.Init(logConfig)

	appCoreLogger.Logger = appCoreLogger.Logger.With().
		Str("app", "resume-match-go").
		Logger()

	hertzCompatibleLogger := hertzadapter.From(appCoreLogger.Logger)
	glog.SetLogger(hertzCompatibleLogger)
	if cfg.Logger.Level == "debug" {
		glog.SetLevel(glog.LevelDebug)
	} else {
		glog.SetLevel(glog.LevelInfo)
	}
}
