package helpers

import (
	"fmt"

	"github.com/oksasatya/go-user-lifecycle/pkg/mailer"
)

// EnsureRecipient backfills the recipient fields templates expect from job.To.
func EnsureRecipient(job *mailer.EmailJob) {
	if job.Data == nil {
		job.Data = map[string]any{}
	}
	for _, k := range []string{"Login", "RecipientEmail"} {
		if v, ok := job.Data[k]; !ok || v == nil || fmt.Sprintf("%v", v) == "" {
			job.Data[k] = job.To
		}
	}
}
