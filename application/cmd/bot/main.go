// application/cmd/bot/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"crypto-market-pulse-bot/application/bootstrap"
	"crypto-market-pulse-bot/internal/infrastructure/config"
	"crypto-market-pulse-bot/pkg/logger"
)

var (
	version   = "1.0.0"
	buildTime = "неизвестно"
)

func main() {
	var (
		env         string
		cfgPath     string
		logLevel    string
		testMode    bool
		noStartRun  bool
		showHelp    bool
		showVersion bool
	)

	flag.StringVar(&env, "env", "dev", "Окружение (dev/prod)")
	flag.StringVar(&cfgPath, "config", "", "Путь к файлу конфигурации (переопределяет env)")
	flag.StringVar(&logLevel, "log-level", "", "Уровень логирования: debug, info, warn, error (переопределяет .env)")
	flag.BoolVar(&testMode, "test", false, "Тестовый режим: алерты пишутся в лог")
	flag.BoolVar(&noStartRun, "no-start-run", false, "Не запускать задачи сразу при старте")
	flag.BoolVar(&showHelp, "help", false, "Показать справку")
	flag.BoolVar(&showVersion, "version", false, "Показать версию")
	flag.Parse()

	if showVersion {
		printVersion()
		return
	}
	if showHelp {
		printHelp()
		return
	}

	os.Setenv("APP_ENV", env)

	configFile := resolveConfigFile(env, cfgPath)
	logger.Warn("📁 Используемый конфиг файл: %s", configFile)

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		logger.Error("❌ Не удалось загрузить конфигурацию: %v", err)
		os.Exit(1)
	}
	cfg.Environment = env
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if !testMode {
		testMode = strings.ToLower(os.Getenv("TEST_MODE")) == "true"
	}

	os.Exit(run(cfg, testMode, !noStartRun && cfg.Schedule.RunOnStart))
}

// resolveConfigFile: явный путь → configs/<env>/.env → .env
func resolveConfigFile(env, explicit string) string {
	if explicit != "" {
		return explicit
	}
	candidates := []string{
		filepath.Join("configs", env, ".env"),
		".env",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	// без файла работаем на переменных окружения
	logger.Warn("⚠️  Файл конфигурации не найден, используются переменные окружения")
	return ""
}

// run запускает приложение и возвращает код выхода
func run(cfg *config.Config, testMode, runOnStart bool) int {
	if err := initLogger(cfg); err != nil {
		fmt.Printf("❌ %v\n", err)
		return 1
	}
	defer logger.Close()

	if testMode {
		logger.Info("🧪 ЗАПУСК В ТЕСТОВОМ РЕЖИМЕ: реальные уведомления не отправляются")
	} else {
		logger.Info("🚀 ЗАПУСК В РАБОЧЕМ РЕЖИМЕ")
	}
	logger.Info("🚀 Запуск Crypto Market Pulse Bot v%s", version)
	logger.Info("📅 Время сборки: %s", buildTime)
	cfg.PrintSummary()

	app, err := bootstrap.NewAppBuilder().
		WithConfig(cfg).
		WithTestMode(testMode).
		WithRunOnStart(runOnStart).
		Build()
	if err != nil {
		logger.Error("❌ Не удалось собрать приложение: %v", err)
		return 1
	}

	if err := app.Initialize(); err != nil {
		logger.Error("❌ Не удалось инициализировать приложение: %v", err)
		return 1
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	runDone := make(chan error, 1)
	go func() {
		runDone <- app.Run()
	}()

	logger.Info("🛑 Нажмите Ctrl+C для остановки")

	select {
	case sig := <-sigChan:
		logger.Info("📶 Получен сигнал: %v", sig)
		_ = app.Stop()
		select {
		case err := <-runDone:
			if err != nil {
				logger.Error("❌ Ошибка при остановке: %v", err)
				return 1
			}
		case <-time.After(45 * time.Second):
			logger.Error("❌ Приложение не остановилось вовремя")
			return 1
		}
		logger.Info("✅ Приложение успешно остановлено")
		return 0

	case err := <-runDone:
		if err != nil {
			logger.Error("❌ Ошибка запуска приложения: %v", err)
			return 1
		}
		return 0
	}
}

func initLogger(cfg *config.Config) error {
	logPath := cfg.LogFile
	if logPath != "" {
		if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
			return fmt.Errorf("не удалось создать директорию логов: %w", err)
		}
	}

	if err := logger.InitGlobal(logPath, cfg.LogLevel, true); err != nil {
		fmt.Printf("❌ Не удалось инициализировать файловый логгер: %v. Переход на консольный...\n", err)
		if err := logger.InitGlobal("", cfg.LogLevel, true); err != nil {
			return fmt.Errorf("не удалось инициализировать консольный логгер: %w", err)
		}
	}
	return nil
}

func printVersion() {
	fmt.Printf("📈 Crypto Market Pulse Bot v%s\n", version)
	fmt.Printf("📅 Сборка: %s\n", buildTime)
	fmt.Println()
	fmt.Println("📊 Функции:")
	fmt.Println("  • Ежедневный индекс страха и жадности с трендом")
	fmt.Println("  • Уровни ликвидности с тепловой карты")
	fmt.Println("  • Торговая идея: long / short / нейтрально")
	fmt.Println("  • Доставка в Telegram и Firebase")
}

func printHelp() {
	fmt.Println("📈 Crypto Market Pulse Bot")
	fmt.Println("Ежедневные алерты: индекс страха и жадности и уровни ликвидности")
	fmt.Println()
	fmt.Println("Использование: bot [опции]")
	fmt.Println()
	fmt.Println("Опции:")
	fmt.Println("  --env string       Окружение (dev/prod) (по умолчанию: dev)")
	fmt.Println("  --config string    Путь к файлу конфигурации (переопределяет env)")
	fmt.Println("  --log-level string Уровень логирования: debug, info, warn, error")
	fmt.Println("  --test             Тестовый режим (алерты только в лог)")
	fmt.Println("  --no-start-run     Не запускать задачи при старте")
	fmt.Println("  --version          Показать информацию о версии")
	fmt.Println("  --help             Показать это справочное сообщение")
	fmt.Println()
	fmt.Println("Переменные окружения (через .env файл):")
	fmt.Println("  TG_API_KEY / TG_CHAT_ID     Telegram бот и чат")
	fmt.Println("  FIREBASE_CREDENTIALS_PATH   Сервисный аккаунт Firebase (FCM)")
	fmt.Println("  SCHEDULE_TIMEZONE           Часовой пояс расписания (Asia/Taipei)")
	fmt.Println("  SENTIMENT_AT / HEATMAP_AT   Время запусков HH:MM")
	fmt.Println("  SCORE_STORE                 file | redis | postgres")
	fmt.Println("  INSTRUMENTS_FILE            TOML со списком инструментов")
	fmt.Println("  LOG_LEVEL / LOG_FILE        Логирование")
	fmt.Println("  HTTP_ENABLED / HTTP_PORT    /metrics и /health")
	fmt.Println()
	fmt.Println("Примеры:")
	fmt.Println("  go run application/cmd/bot/main.go --env=dev --log-level=debug")
	fmt.Println("  go run application/cmd/bot/main.go --config=configs/prod/.env --no-start-run")
}
