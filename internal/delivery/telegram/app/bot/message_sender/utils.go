// internal/delivery/telegram/app/bot/message_sender/utils.go
package message_sender

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"crypto-market-pulse-bot/pkg/logger"
)

// bodyBuilder собирает тело запроса заново для каждой попытки
type bodyBuilder func() (io.Reader, string, error)

func jsonBody(request map[string]interface{}) bodyBuilder {
	return func() (io.Reader, string, error) {
		jsonData, err := json.Marshal(request)
		if err != nil {
			return nil, "", fmt.Errorf("failed to marshal request: %w", err)
		}
		return bytes.NewReader(jsonData), "application/json", nil
	}
}

func multipartBody(fields map[string]string, fileField, filePath string) bodyBuilder {
	return func() (io.Reader, string, error) {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)

		for key, value := range fields {
			if err := w.WriteField(key, value); err != nil {
				return nil, "", fmt.Errorf("failed to write field %s: %w", key, err)
			}
		}

		file, err := os.Open(filePath)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open %s: %w", filePath, err)
		}
		defer file.Close()

		part, err := w.CreateFormFile(fileField, filepath.Base(filePath))
		if err != nil {
			return nil, "", fmt.Errorf("failed to create form file: %w", err)
		}
		if _, err := io.Copy(part, file); err != nil {
			return nil, "", fmt.Errorf("failed to copy %s: %w", filePath, err)
		}
		if err := w.Close(); err != nil {
			return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
		}
		return &buf, w.FormDataContentType(), nil
	}
}

// sendTelegramRequest отправляет запрос к Telegram API
func (ms *MessageSenderImpl) sendTelegramRequest(ctx context.Context, method string, build bodyBuilder) error {
	for attempt := 0; ; attempt++ {
		retryAfter, err := ms.doTelegramRequest(ctx, method, build)
		if err == nil {
			return nil
		}
		if retryAfter <= 0 || attempt >= ms.maxRetries {
			return err
		}

		// Обработка ошибки 429 (Too Many Requests)
		logger.Warn("⚠️ Telegram API rate limit, waiting %d seconds", retryAfter)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(retryAfter) * time.Second):
		}
	}
}

// doTelegramRequest — одна попытка; retryAfter > 0 означает 429
func (ms *MessageSenderImpl) doTelegramRequest(ctx context.Context, method string, build bodyBuilder) (int, error) {
	body, contentType, err := build()
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ms.baseURL+method, body)
	if err != nil {
		return 0, fmt.Errorf("failed to build request %s: %w", method, err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := ms.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to send request to %s: %w", method, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read response: %w", err)
	}

	var telegramResp struct {
		OK          bool   `json:"ok"`
		ErrorCode   int    `json:"error_code,omitempty"`
		Description string `json:"description,omitempty"`
		Parameters  struct {
			RetryAfter int `json:"retry_after"`
		} `json:"parameters"`
	}

	if err := json.Unmarshal(respBody, &telegramResp); err != nil {
		return 0, fmt.Errorf("failed to parse response (HTTP %d): %w", resp.StatusCode, err)
	}

	if !telegramResp.OK {
		apiErr := fmt.Errorf("telegram API error %d: %s", telegramResp.ErrorCode, telegramResp.Description)
		if telegramResp.ErrorCode == http.StatusTooManyRequests {
			retryAfter := 5 // секунд по умолчанию
			if telegramResp.Parameters.RetryAfter > 0 {
				retryAfter = telegramResp.Parameters.RetryAfter
			}
			return retryAfter, apiErr
		}
		return 0, apiErr
	}

	return 0, nil
}

// GetMessageHash создает ключ для проверки дубликатов
func GetMessageHash(chatID, text, attachment string) string {
	return fmt.Sprintf("%s:%s:%s", chatID, text, attachment)
}

// NormalizeChatID приводит chat ID к виду, который принимает Bot API:
// числовой ID как есть, имя канала с префиксом @
func NormalizeChatID(chatID string) string {
	id := strings.TrimSpace(chatID)
	if id == "" {
		return ""
	}
	if _, err := strconv.ParseInt(id, 10, 64); err == nil {
		return id
	}
	if !strings.HasPrefix(id, "@") {
		id = "@" + id
	}
	return id
}
