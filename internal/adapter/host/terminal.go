// Package host implements the host capabilities the catalog core consumes for a terminal session.
package host

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/Abdurahmanit/GroupProject/marketplace-client/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-client/internal/platform/logger"
	"go.uber.org/zap"
)

// StaticCredentials serves a fixed init-data string.
type StaticCredentials struct {
	initData string
}

func NewStaticCredentials(initData string) StaticCredentials {
	return StaticCredentials{initData: strings.TrimSpace(initData)}
}

func (c StaticCredentials) Credential() (string, bool) {
	return c.initData, c.initData != ""
}

// TerminalConfig describes the identity of the terminal user.
type TerminalConfig struct {
	InitData string
	UserID   int64
	Username string
}

// Terminal is a domain.Host that alerts on a writer and reads confirmations from a reader.
type Terminal struct {
	StaticCredentials

	mu      sync.Mutex
	in      *bufio.Reader
	out     io.Writer
	user    domain.HostUser
	hasUser bool
	logger  *logger.Logger
}

var _ domain.Host = (*Terminal)(nil)

// NewTerminal builds a terminal host. When cfg.UserID is unset the user is taken from the
// init-data "user" field, if present.
func NewTerminal(in io.Reader, out io.Writer, cfg TerminalConfig, log *logger.Logger) *Terminal {
	if log == nil {
		log = logger.NewNop()
	}
	t := &Terminal{
		StaticCredentials: NewStaticCredentials(cfg.InitData),
		in:                bufio.NewReader(in),
		out:               out,
		logger:            log.Named("TerminalHost"),
	}

	switch {
	case cfg.UserID > 0:
		t.user = domain.HostUser{ID: cfg.UserID, Username: cfg.Username}
		t.hasUser = true
	case cfg.InitData != "":
		user, err := UserFromInitData(cfg.InitData)
		if err != nil {
			t.logger.Warn("Could not read user from init data", zap.Error(err))
			break
		}
		t.user = user
		t.hasUser = true
	}
	return t
}

func (t *Terminal) CurrentUser() (domain.HostUser, bool) {
	return t.user, t.hasUser
}

func (t *Terminal) ShowAlert(message string, onDismiss func()) {
	t.mu.Lock()
	fmt.Fprintln(t.out, message)
	t.mu.Unlock()
	if onDismiss != nil {
		onDismiss()
	}
}

// ShowConfirm prompts on the writer and answers with the next input line.
// Anything other than an explicit yes, including end of input, is a refusal.
func (t *Terminal) ShowConfirm(message string, onResult func(confirmed bool)) {
	t.mu.Lock()
	fmt.Fprintf(t.out, "%s [y/N]: ", message)
	line, err := t.in.ReadString('\n')
	t.mu.Unlock()

	if err != nil && line == "" {
		t.logger.Debug("No confirmation input", zap.Error(err))
		onResult(false)
		return
	}
	onResult(isYes(line))
}

func isYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes", "д", "да", "ha", "xa":
		return true
	}
	return false
}

// UserFromInitData extracts the user object embedded in host init-data.
func UserFromInitData(initData string) (domain.HostUser, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return domain.HostUser{}, fmt.Errorf("parse init data: %w", err)
	}
	raw := values.Get("user")
	if raw == "" {
		return domain.HostUser{}, fmt.Errorf("%w: init data carries no user", domain.ErrUserUnknown)
	}

	var payload struct {
		ID        int64  `json:"id"`
		FirstName string `json:"first_name"`
		Username  string `json:"username"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return domain.HostUser{}, fmt.Errorf("decode init data user: %w", err)
	}
	if payload.ID <= 0 {
		return domain.HostUser{}, fmt.Errorf("%w: init data user has no id", domain.ErrUserUnknown)
	}
	return domain.HostUser{ID: payload.ID, FirstName: payload.FirstName, Username: payload.Username}, nil
}
