package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/eugeniobenito/Triathlon-Updates/internal/race"
)

const (
	telegramAPIBaseURL = "https://api.telegram.org/bot"
	telegramTimeout    = 10 * time.Second
)

// TelegramNotifier sends race announcements to a Telegram chat
type TelegramNotifier struct {
	botToken   string
	chatID     string
	baseURL    string
	httpClient *http.Client
}

// NewTelegramNotifier creates a Telegram notifier from TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID
func NewTelegramNotifier() (*TelegramNotifier, error) {
	return NewTelegramClient(os.Getenv("TELEGRAM_BOT_TOKEN"), os.Getenv("TELEGRAM_CHAT_ID"))
}

// NewTelegramClient creates a Telegram notifier for the given bot and chat
func NewTelegramClient(botToken, chatID string) (*TelegramNotifier, error) {
	if botToken == "" {
		return nil, fmt.Errorf("bot token is required")
	}
	if chatID == "" {
		return nil, fmt.Errorf("chat ID is required")
	}

	return &TelegramNotifier{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  telegramAPIBaseURL,
		httpClient: &http.Client{
			Timeout: telegramTimeout,
		},
	}, nil
}

// Notify sends one message per race
func (n *TelegramNotifier) Notify(docs []*race.Document) error {
	for _, doc := range docs {
		if err := n.SendMessage(html.EscapeString(formatAnnouncement(doc))); err != nil {
			return fmt.Errorf("sending announcement: %w", err)
		}
	}
	return nil
}

// SendMessage sends an HTML-formatted text message to the configured chat
func (n *TelegramNotifier) SendMessage(text string) error {
	if text == "" {
		return fmt.Errorf("message text is required")
	}

	url := fmt.Sprintf("%s%s/sendMessage", n.baseURL, n.botToken)

	payload := map[string]interface{}{
		"chat_id":                  n.chatID,
		"text":                     text,
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling payload: %w", err)
	}

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	if !result.OK {
		return fmt.Errorf("telegram API error: %s", result.Description)
	}

	return nil
}
