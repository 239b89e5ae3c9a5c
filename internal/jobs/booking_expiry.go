// File: internal/jobs/booking_expiry.go
package jobs

import (
	"context"
	"fmt"
	"time"

	"rent_a_ride_backend/internal/booking"
	"rent_a_ride_backend/internal/config"
	"rent_a_ride_backend/internal/session"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// BookingExpiryJob expires stale pending bookings on a schedule and purges
// expired sessions while it is at it.
type BookingExpiryJob struct {
	bookingService booking.Service
	sessionService session.Service
	logger         *zap.Logger
	cfg            *config.Config
	cronScheduler  *cron.Cron
}

// NewBookingExpiryJob creates a new BookingExpiryJob.
func NewBookingExpiryJob(
	bookingService booking.Service,
	sessionService session.Service,
	logger *zap.Logger,
	cfg *config.Config,
) *BookingExpiryJob {
	scheduler := cron.New(cron.WithLogger(NewCronLogger(logger.Named("cron"))))

	return &BookingExpiryJob{
		bookingService: bookingService,
		sessionService: sessionService,
		logger:         logger.Named("BookingExpiryJob"),
		cfg:            cfg,
		cronScheduler:  scheduler,
	}
}

// SetupAndStart schedules and starts the cron job.
func (j *BookingExpiryJob) SetupAndStart() error {
	jobSpec := j.cfg.BookingExpiryJobSchedule
	if jobSpec == "" {
		j.logger.Warn("Booking expiry job schedule not defined (BOOKING_EXPIRY_JOB_SCHEDULE). Job will not run.")
		return nil
	}

	jobID, err := j.cronScheduler.AddFunc(jobSpec, j.runJob)
	if err != nil {
		j.logger.Error("Failed to schedule booking expiry job", zap.String("spec", jobSpec), zap.Error(err))
		return err
	}

	j.logger.Info("Booking expiry job scheduled", zap.String("spec", jobSpec), zap.Any("jobID", jobID))
	j.cronScheduler.Start()
	return nil
}

// runJob is the actual work performed by the cron job.
func (j *BookingExpiryJob) runJob() {
	j.logger.Info("Starting booking expiry job run...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	expiredBookings, err := j.bookingService.ExpirePending(ctx)
	if err != nil {
		j.logger.Error("Booking expiry job run failed", zap.Error(err))
	} else {
		j.logger.Info("Booking expiry job run completed", zap.Int64("bookings_expired", expiredBookings))
	}

	purgedSessions, err := j.sessionService.PurgeExpired(ctx)
	if err != nil {
		j.logger.Error("Session purge failed", zap.Error(err))
	} else if purgedSessions > 0 {
		j.logger.Info("Expired sessions purged", zap.Int64("sessions_purged", purgedSessions))
	}
}

// Stop gracefully stops the cron scheduler.
func (j *BookingExpiryJob) Stop() {
	if j.cronScheduler != nil {
		j.logger.Info("Stopping booking expiry job scheduler...")
		stopCtx := j.cronScheduler.Stop()
		select {
		case <-stopCtx.Done():
			j.logger.Info("Booking expiry job scheduler stopped gracefully.")
		case <-time.After(10 * time.Second):
			j.logger.Warn("Booking expiry job scheduler stop timed out.")
		}
	}
}

// --- Cron Logger Adapter ---

// cronLogger adapts zap.Logger to the cron.Logger interface.
type cronLogger struct {
	zl *zap.Logger
}

// NewCronLogger creates a new cronLogger.
func NewCronLogger(zl *zap.Logger) cron.Logger {
	return &cronLogger{zl: zl}
}

func (cl *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	cl.zl.Info(msg, cl.parseKeysAndValues(keysAndValues...)...)
}

func (cl *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := cl.parseKeysAndValues(keysAndValues...)
	fields = append(fields, zap.Error(err))
	cl.zl.Error(msg, fields...)
}

func (cl *cronLogger) parseKeysAndValues(keysAndValues ...interface{}) []zap.Field {
	var fields []zap.Field
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 < len(keysAndValues) {
			fields = append(fields, zap.Any(fmt.Sprintf("%v", keysAndValues[i]), keysAndValues[i+1]))
		} else {
			fields = append(fields, zap.Any(fmt.Sprintf("%v", keysAndValues[i]), "MISSING_VALUE"))
		}
	}
	return fields
}
