package timer

import (
	"fmt"

	"github.com/rdkcentral/zilker-sdk-sub009/pkg/common/validation"
)

// ScheduleCron schedules cb to run on a cron schedule, repeating until
// canceled. Standard five-field expressions and descriptors are accepted:
//
//	"*/5 * * * *"   - every five minutes
//	"30 2 * * *"    - 02:30 every day
//	"@hourly"       - top of every hour
//
// Evaluation uses the scheduler's configured location.
func (s *Scheduler) ScheduleCron(spec string, cb Callback, arg interface{}) (Handle, error) {
	if cb == nil {
		return InvalidHandle, validation.ValidateNotNil("timer", "callback", nil)
	}
	if err := validation.ValidateNotEmpty("timer", "spec", spec); err != nil {
		return InvalidHandle, err
	}

	schedule, err := s.parser.Parse(spec)
	if err != nil {
		return InvalidHandle, fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}

	t := &task{
		kind:      kindCron,
		cb:        cb,
		arg:       arg,
		cronSched: schedule,
		fireAt:    schedule.Next(s.clock.Now().In(s.location)),
	}
	return s.register(t)
}
