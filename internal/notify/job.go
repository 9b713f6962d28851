// Package notify hands notification emails to an out-of-process worker.
//
// Delivery is at-most-once: a job is popped from the queue exactly once and
// a failed send is logged and dropped. Callers never wait for delivery and
// never see its outcome.
package notify

import (
	"context" // Request scoped context
	"fmt"     // Message formatting
	"time"    // Enqueue timestamps

	"crowdfunding/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus" // Logging library
)

// Job is one email to deliver
type Job struct {
	ID         string    `json:"id"`
	Subject    string    `json:"subject"`
	Message    string    `json:"message"`
	Recipients []string  `json:"recipients"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// Dispatcher enqueues jobs for asynchronous delivery
type Dispatcher interface {
	Enqueue(ctx context.Context, job Job) error
}

// Send enqueues job and swallows any error after logging it; the request
// that triggered the email succeeds or fails on its own.
func Send(ctx context.Context, d Dispatcher, job Job) {
	if d == nil {
		return
	}
	if err := d.Enqueue(ctx, job); err != nil {
		logrus.WithFields(logrus.Fields{
			"subject":    job.Subject,
			"recipients": job.Recipients,
			"error":      err.Error(),
		}).Error("Failed to enqueue email")
	}
}

// WelcomeJob greets a newly registered user
func WelcomeJob(user *domain.User) Job {
	return Job{
		Subject:    "Welcome!",
		Message:    fmt.Sprintf("You have successfully registered the account: %s", user.Username),
		Recipients: []string{user.Email},
	}
}

// CollectCreatedJob confirms a new collect to its author
func CollectCreatedJob(author *domain.User, collectTitle string) Job {
	return Job{
		Subject:    "New collect created!",
		Message:    fmt.Sprintf("You have successfully created the collect: %s", collectTitle),
		Recipients: []string{author.Email},
	}
}

// DonationJob tells a collect author about a new donation
func DonationJob(donorUsername string, amount int64, collectTitle, authorEmail string) Job {
	return Job{
		Subject:    "New donation!",
		Message:    fmt.Sprintf("User %s donated %d to your collect %q.", donorUsername, amount, collectTitle),
		Recipients: []string{authorEmail},
	}
}
