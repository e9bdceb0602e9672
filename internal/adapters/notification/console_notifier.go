// internal/adapters/notification/console_notifier.go
package notification

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// ConsoleNotifier печатает алерты в stdout, когда внешние каналы не настроены
type ConsoleNotifier struct {
	out io.Writer
}

// NewConsoleNotifier создает консольный нотификатор
func NewConsoleNotifier() *ConsoleNotifier {
	return &ConsoleNotifier{out: os.Stdout}
}

// Name возвращает имя канала
func (cn *ConsoleNotifier) Name() string { return "console" }

// IsEnabled всегда true
func (cn *ConsoleNotifier) IsEnabled() bool { return true }

// Send печатает алерт
func (cn *ConsoleNotifier) Send(_ context.Context, alert Alert) error {
	var b strings.Builder
	b.WriteString(strings.Repeat("=", 40) + "\n")
	b.WriteString(alert.Caption + "\n")
	if alert.ImagePath != "" {
		b.WriteString("🖼 " + alert.ImagePath + "\n")
	}
	b.WriteString(strings.Repeat("=", 40) + "\n")
	_, err := fmt.Fprint(cn.out, b.String())
	return err
}
