package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/iudanet/tmasync/internal/client/offline"
	"github.com/iudanet/tmasync/internal/client/sync"
	"github.com/iudanet/tmasync/internal/validation"
)

// AttendanceOptions флаги команды attendance mark
type AttendanceOptions struct {
	PlayerID string
	Date     string
	Sport    string
	Absent   bool
}

func (c *Cli) runMarkAttendance(ctx context.Context, opts AttendanceOptions) error {
	if opts.PlayerID == "" {
		return fmt.Errorf("player id is required")
	}

	date := opts.Date
	if date == "" {
		date = time.Now().Format(time.DateOnly)
	} else if _, err := time.Parse(time.DateOnly, date); err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
	}

	record := map[string]any{
		"player_id": opts.PlayerID,
		"date":      date,
		"present":   !opts.Absent,
	}
	if opts.Sport != "" {
		record["sport"] = opts.Sport
	}

	return c.report(c.offline.MarkAttendanceOffline(ctx, record))
}

func (c *Cli) runSubmitForm(ctx context.Context, kind, endpoint string, payload map[string]any) error {
	if err := validation.ValidateKind(kind); err != nil {
		return fmt.Errorf("invalid form type: %w", err)
	}
	if err := validation.ValidateEndpoint(endpoint); err != nil {
		return err
	}
	return c.report(c.offline.SubmitFormOffline(ctx, kind, endpoint, payload))
}

func (c *Cli) runCreatePlan(ctx context.Context, payload map[string]any) error {
	return c.report(c.offline.CreateTrainingPlanOffline(ctx, payload))
}

func (c *Cli) runUpdatePerformance(ctx context.Context, payload map[string]any) error {
	return c.report(c.offline.UpdatePerformanceOffline(ctx, payload))
}

func (c *Cli) runSendMessage(ctx context.Context, payload map[string]any) error {
	return c.report(c.offline.SendMessageOffline(ctx, payload))
}

func (c *Cli) runCall(ctx context.Context, kind string, payload map[string]any, opts offline.Options) error {
	if err := validation.ValidateKind(kind); err != nil {
		return err
	}
	if err := validation.ValidateEndpoint(opts.Endpoint); err != nil {
		return err
	}
	if err := validation.ValidateMethod(opts.Method); err != nil {
		return err
	}
	opts.Method = strings.ToUpper(opts.Method)
	return c.report(c.offline.APICallOffline(ctx, kind, payload, opts))
}

// report печатает итог офлайн-операции; потерянное действие возвращается как ошибка
func (c *Cli) report(result offline.Result) error {
	switch result.Status {
	case offline.StatusSent:
		c.io.Println("✓ Sent")
		if len(result.Response) > 0 {
			c.io.Printf("%s\n", result.Response)
		}
	case offline.StatusQueued:
		c.io.Printf("⏳ Queued for sync (item %s)\n", result.ItemID)
		if result.Offline {
			c.io.Println(sync.MessageOffline + ", the action will be sent when the connection is back.")
		} else if result.Err != nil {
			c.io.Printf("Direct call failed: %v\n", result.Err)
		}
	case offline.StatusFailedToQueue:
		return fmt.Errorf("action was not sent and could not be queued: %w", result.Err)
	default:
		return fmt.Errorf("unexpected result status %q", result.Status)
	}
	return nil
}
