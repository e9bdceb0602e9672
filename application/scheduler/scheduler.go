// application/scheduler/scheduler.go
package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"crypto-market-pulse-bot/pkg/logger"
	"crypto-market-pulse-bot/pkg/utils"
)

// DefaultJobTimeout ограничивает один запуск задачи
const DefaultJobTimeout = 10 * time.Minute

const timeLayout = "2006-01-02 15:04:05 MST"

// Schedule определяет расписание задачи
type Schedule struct {
	// DailyAt: задача запускается раз в день в HH:MM заданного часового пояса
	// Every: задача запускается с заданным интервалом
	kind     scheduleKind
	hour     int
	minute   int
	location *time.Location
	interval time.Duration
}

type scheduleKind int

const (
	kindDaily    scheduleKind = iota // раз в сутки в HH:MM
	kindInterval                     // каждые N единиц времени
)

// DailyAt создает расписание "каждый день в HH:MM" в loc (nil означает UTC)
func DailyAt(hour, minute int, loc *time.Location) Schedule {
	if loc == nil {
		loc = time.UTC
	}
	return Schedule{kind: kindDaily, hour: hour, minute: minute, location: loc}
}

// Every создает расписание "каждые N времени"
func Every(d time.Duration) Schedule {
	return Schedule{kind: kindInterval, interval: d}
}

// nextRun вычисляет время следующего запуска строго после now
func (s Schedule) nextRun(now time.Time) time.Time {
	switch s.kind {
	case kindDaily:
		local := now.In(s.location)
		next := time.Date(local.Year(), local.Month(), local.Day(), s.hour, s.minute, 0, 0, s.location)
		if !next.After(now) {
			// через time.Date, а не +24h: сутки при переходе на летнее время короче
			next = time.Date(local.Year(), local.Month(), local.Day()+1, s.hour, s.minute, 0, 0, s.location)
		}
		return next
	case kindInterval:
		return now.Add(s.interval)
	default:
		return now.Add(24 * time.Hour)
	}
}

// Job описывает одну планируемую задачу
type Job struct {
	Name        string
	Description string
	Schedule    Schedule
	Handler     func(ctx context.Context) error
	Timeout     time.Duration // 0: DefaultJobTimeout

	mu      sync.Mutex
	running bool
	nextRun time.Time
	lastRun time.Time
	lastErr error
	runs    int
	skipped int
}

// Status возвращает текущее состояние задачи
func (j *Job) Status() JobStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	return JobStatus{
		Name:        j.Name,
		Description: j.Description,
		Running:     j.running,
		NextRun:     j.nextRun,
		LastRun:     j.lastRun,
		LastErr:     j.lastErr,
		Runs:        j.runs,
		Skipped:     j.skipped,
	}
}

// JobStatus снапшот состояния задачи
type JobStatus struct {
	Name        string
	Description string
	Running     bool
	NextRun     time.Time
	LastRun     time.Time
	LastErr     error
	Runs        int
	Skipped     int // запуски, пропущенные из-за незавершённого предыдущего
}

// tryStart помечает задачу как выполняемую; false, если предыдущий запуск ещё идёт
func (j *Job) tryStart() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.running {
		j.skipped++
		return false
	}
	j.running = true
	return true
}

// Scheduler управляет всеми cron-задачами приложения
type Scheduler struct {
	jobs     []*Job
	mu       sync.RWMutex
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	tickInterval time.Duration
	now          func() time.Time
}

// New создает новый планировщик
func New() *Scheduler {
	return &Scheduler{
		stopChan:     make(chan struct{}),
		tickInterval: 30 * time.Second,
		now:          time.Now,
	}
}

// Register добавляет задачу в планировщик.
// Должен вызываться до Start().
func (s *Scheduler) Register(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job.nextRun = job.Schedule.nextRun(s.now())
	s.jobs = append(s.jobs, job)

	logger.Info("📋 [Scheduler] Зарегистрирована задача %q, первый запуск в %s",
		job.Name, job.nextRun.Format(timeLayout))
}

// Start запускает цикл планировщика в фоновой горутине
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	logger.Info("✅ [Scheduler] Запущен (%d задач)", len(s.jobs))
}

// Stop останавливает планировщик и ждёт завершения текущих задач
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	logger.Info("🛑 [Scheduler] Остановлен")
}

// RunNow запускает задачу вне расписания, не сдвигая следующий плановый запуск.
// Возвращает false, если задача не найдена или уже выполняется.
func (s *Scheduler) RunNow(name string) bool {
	job := s.find(name)
	if job == nil {
		logger.Warn("⚠️ [Scheduler] Задача %q не найдена", name)
		return false
	}
	if !job.tryStart() {
		logger.Warn("⏭ [Scheduler] Задача %q ещё выполняется, внеплановый запуск пропущен", name)
		return false
	}
	s.wg.Add(1)
	go s.run(job)
	return true
}

// Jobs возвращает статус всех задач
func (s *Scheduler) Jobs() []JobStatus {
	s.mu.RLock()
	jobs := make([]*Job, len(s.jobs))
	copy(jobs, s.jobs)
	s.mu.RUnlock()

	statuses := make([]JobStatus, len(jobs))
	for i, j := range jobs {
		statuses[i] = j.Status()
	}
	return statuses
}

func (s *Scheduler) find(name string) *Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, j := range s.jobs {
		if j.Name == name {
			return j
		}
	}
	return nil
}

// loop — основной цикл: периодически проверяет, какие задачи нужно запустить
func (s *Scheduler) loop() {
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	// Первая проверка сразу при старте
	s.tick()

	for {
		select {
		case <-ticker.C:
			s.tick()
		case <-s.stopChan:
			return
		}
	}
}

// tick проверяет все задачи и запускает те, у которых наступило время
func (s *Scheduler) tick() {
	now := s.now()

	s.mu.RLock()
	jobs := make([]*Job, len(s.jobs))
	copy(jobs, s.jobs)
	s.mu.RUnlock()

	for _, job := range jobs {
		job.mu.Lock()
		due := !now.Before(job.nextRun)
		if due && job.running {
			// плановое время пришло, но прошлый запуск не закончился: пропускаем этот слот
			job.skipped++
			job.nextRun = job.Schedule.nextRun(now)
			next := job.nextRun
			job.mu.Unlock()
			logger.Warn("⏭ [Scheduler] Задача %q ещё выполняется, запуск пропущен. Следующий: %s",
				job.Name, next.Format(timeLayout))
			continue
		}
		if due {
			// слот считается занятым с момента старта
			job.running = true
			job.nextRun = job.Schedule.nextRun(now)
		}
		job.mu.Unlock()

		if due {
			s.wg.Add(1)
			go s.run(job)
		}
	}
}

// run выполняет одну задачу и обновляет её состояние.
// Вызывающий уже пометил задачу как running и сдвинул nextRun.
func (s *Scheduler) run(job *Job) {
	defer s.wg.Done()

	timeout := job.Timeout
	if timeout <= 0 {
		timeout = DefaultJobTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop отменяет выполняющиеся задачи
	go func() {
		select {
		case <-s.stopChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	logger.Info("▶️  [Scheduler] Запуск задачи %q", job.Name)
	start := s.now()

	err := s.invoke(ctx, job)

	elapsed := s.now().Sub(start)

	job.mu.Lock()
	job.running = false
	job.lastRun = start
	job.lastErr = err
	job.runs++
	nextRun := job.nextRun
	job.mu.Unlock()

	if err != nil {
		logger.Error("❌ [Scheduler] Задача %q завершилась с ошибкой за %s: %v", job.Name, utils.FormatDuration(elapsed), err)
	} else {
		logger.Info("✅ [Scheduler] Задача %q выполнена за %s. Следующий запуск: %s",
			job.Name, utils.FormatDuration(elapsed), nextRun.Format(timeLayout))
	}
}

// invoke вызывает обработчик; паника превращается в ошибку запуска
func (s *Scheduler) invoke(ctx context.Context, job *Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("паника в задаче %q: %v", job.Name, r)
			logger.Error("💥 [Scheduler] %v\n%s", err, debug.Stack())
		}
	}()
	return job.Handler(ctx)
}
