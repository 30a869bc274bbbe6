// Package audit writes a local JSONL trail of azrecon invocations so scan
// runs against a tenant are attributable after the fact.
package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type Event struct {
	Timestamp     string   `json:"timestamp"`
	Operation     string   `json:"operation"`
	Tenant        string   `json:"tenant,omitempty"`
	Subscription  string   `json:"subscription,omitempty"`
	Args          []string `json:"args"`
	Result        string   `json:"result"`
	ExitCode      int      `json:"exitCode"`
	DurationMs    int64    `json:"durationMs"`
	CorrelationID string   `json:"correlationId"`
}

func BuildEvent(args []string, result string, exitCode int, duration time.Duration) Event {
	op, tenant, subscription := inferFromArgs(args)
	return Event{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Operation:     op,
		Tenant:        tenant,
		Subscription:  subscription,
		Args:          args,
		Result:        result,
		ExitCode:      exitCode,
		DurationMs:    duration.Milliseconds(),
		CorrelationID: fmt.Sprintf("%d", time.Now().UTC().UnixNano()),
	}
}

func Write(event Event) error {
	path, err := userAuditPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	line, err := json.Marshal(event)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(append(line, '\n'))
	return err
}

func ReadUserAudit() ([]Event, error) {
	path, err := userAuditPath()
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	var out []Event
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var event Event
		if err := json.Unmarshal([]byte(line), &event); err == nil {
			out = append(out, event)
		}
	}
	return out, scanner.Err()
}

func userAuditPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".azrecon", "audit.log"), nil
}

func inferFromArgs(args []string) (operation, tenant, subscription string) {
	operation = "root"
	if len(args) > 1 {
		for i := 1; i < len(args); i++ {
			if strings.HasPrefix(args[i], "-") {
				continue
			}
			operation = args[i]
			break
		}
	}
	for i := 0; i < len(args); i++ {
		if i+1 < len(args) {
			switch args[i] {
			case "--tenant-id":
				tenant = args[i+1]
			case "--subscription":
				subscription = args[i+1]
			}
		}
	}
	return
}
