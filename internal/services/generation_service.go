package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// GenerationStatus is the orchestrator-visible session state.
type GenerationStatus string

const (
	StatusIdle       GenerationStatus = "idle"
	StatusUploading  GenerationStatus = "uploading"
	StatusGenerating GenerationStatus = "generating"
	StatusPolling    GenerationStatus = "polling"
	StatusDone       GenerationStatus = "done"
	StatusError      GenerationStatus = "error"
)

var ErrGenerationSessionNotFound = errors.New("generation session not found")

// ErrNotConfigured means the server-side generation credential is missing.
var ErrNotConfigured = errors.New("generation service is not configured")

// GenerationSessionInfo is the externally visible snapshot of one session.
// Status, result URL and error message always update together under the
// session lock, so a reader never observes a half-applied transition.
type GenerationSessionInfo struct {
	SessionID    string           `json:"sessionId"`
	UserID       string           `json:"-"`
	Status       GenerationStatus `json:"status"`
	TaskID       string           `json:"taskId,omitempty"`
	VideoURL     string           `json:"videoUrl,omitempty"`
	ErrorMessage string           `json:"error,omitempty"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

// Terminal reports whether no further transition can occur without a reset.
func (i GenerationSessionInfo) Terminal() bool {
	return i.Status == StatusDone || i.Status == StatusError
}

type generationSession struct {
	info        GenerationSessionInfo
	epoch       uint64
	submittedAt time.Time
	finishedAt  time.Time
}

// GenerationTopic is the event topic carrying one session's transitions.
func GenerationTopic(sessionID string) string {
	return "generation_status_" + sessionID
}

// GenerationService coordinates quota pre-check, image upload, remote job
// submission and status polling for animated wallpaper generation. Each
// session owns an epoch counter; reset or supersession bumps it, so a stale
// poll loop can never overwrite a newer session's state.
type GenerationService struct {
	mu           sync.Mutex
	sessions     map[string]*generationSession
	activeByUser map[string]string

	quota    QuotaManager
	uploader StorageUploader
	remote   GenerationAPI
	events   GenerationEvents

	pollInterval time.Duration
	maxPollTime  time.Duration
	retention    time.Duration
}

func NewGenerationService(
	quota QuotaManager,
	uploader StorageUploader,
	remote GenerationAPI,
	events GenerationEvents,
	pollInterval time.Duration,
	maxPollTime time.Duration,
	retention time.Duration,
) *GenerationService {
	gs := &GenerationService{
		sessions:     make(map[string]*generationSession),
		activeByUser: make(map[string]string),
		quota:        quota,
		uploader:     uploader,
		remote:       remote,
		events:       events,
		pollInterval: pollInterval,
		maxPollTime:  maxPollTime,
		retention:    retention,
	}
	go gs.periodicCleanup()
	return gs
}

// StartGeneration validates input, checks quota, then drives the
// upload -> submit -> poll pipeline in the background. It returns the new
// session id immediately.
func (gs *GenerationService) StartGeneration(ctx context.Context, userID string, file UploadFile, templateID, resolution string) (string, error) {
	if userID == "" {
		return "", errors.New("user not found in context")
	}
	if !gs.remote.Configured() {
		return "", ErrNotConfigured
	}
	if templateID == "" {
		return "", &ValidationError{Msg: "template is required"}
	}
	template, ok := EffectTemplateByID(templateID)
	if !ok {
		return "", &ValidationError{Msg: fmt.Sprintf("unknown template %q", templateID)}
	}
	if len(file.Data) == 0 {
		return "", &ValidationError{Msg: "no file provided"}
	}

	// Advisory pre-check before any expensive work. The commit happens only
	// after the remote job succeeds.
	tier, err := gs.quota.GetTier(userID)
	if err != nil {
		return "", err
	}
	status, err := gs.quota.CheckQuota(userID, tier, Today())
	if err != nil {
		return "", err
	}
	if !status.Allowed {
		return "", &QuotaExceededError{Status: status}
	}

	sessionID := uuid.New().String()

	gs.mu.Lock()
	// A still-running session for the same user is superseded: its epoch is
	// bumped so its poll loop dies on the next check.
	if prevID, ok := gs.activeByUser[userID]; ok {
		if prev, ok := gs.sessions[prevID]; ok && !prev.info.Terminal() {
			prev.epoch++
			prev.info = GenerationSessionInfo{
				SessionID: prevID,
				UserID:    userID,
				Status:    StatusIdle,
				UpdatedAt: time.Now(),
			}
		}
	}
	sess := &generationSession{
		info: GenerationSessionInfo{
			SessionID: sessionID,
			UserID:    userID,
			Status:    StatusUploading,
			UpdatedAt: time.Now(),
		},
		epoch: 1,
	}
	gs.sessions[sessionID] = sess
	gs.activeByUser[userID] = sessionID
	epoch := sess.epoch
	gs.mu.Unlock()

	gs.publish(sess.info)

	go gs.run(sessionID, epoch, userID, file, template, resolution)

	return sessionID, nil
}

// run executes one generation attempt. All network calls happen on a
// background context because the originating HTTP request is long gone.
func (gs *GenerationService) run(sessionID string, epoch uint64, userID string, file UploadFile, template EffectTemplate, resolution string) {
	ctx := context.Background()
	model := DefaultModelFor(template)

	imageURL, err := gs.uploader.Upload(ctx, file, userID, model)
	if err != nil {
		gs.fail(sessionID, epoch, userFacingMessage(err))
		return
	}

	if !gs.transition(sessionID, epoch, func(info *GenerationSessionInfo) {
		info.Status = StatusGenerating
	}) {
		return
	}

	result, err := gs.remote.SubmitJob(ctx, SubmitRequest{
		ImageURL:   imageURL,
		Template:   template.Template,
		Model:      model,
		Resolution: resolution,
	})
	if err != nil {
		gs.fail(sessionID, epoch, userFacingMessage(err))
		return
	}

	submittedAt := time.Now()
	gs.mu.Lock()
	if sess, ok := gs.sessions[sessionID]; ok && sess.epoch == epoch {
		sess.submittedAt = submittedAt
	}
	gs.mu.Unlock()

	if !gs.transition(sessionID, epoch, func(info *GenerationSessionInfo) {
		info.Status = StatusPolling
		info.TaskID = result.TaskID
	}) {
		return
	}

	gs.pollLoop(ctx, sessionID, epoch, userID, result.TaskID, submittedAt)
}

// pollLoop queries job status on a fixed interval until a terminal state or
// the global wall-clock deadline. The abort check at the top of each
// iteration makes cancellation cooperative: an in-flight request cannot be
// stopped, but its outcome is discarded.
func (gs *GenerationService) pollLoop(ctx context.Context, sessionID string, epoch uint64, userID, taskID string, submittedAt time.Time) {
	for {
		if !gs.alive(sessionID, epoch) {
			return
		}

		if elapsed := time.Since(submittedAt); elapsed > gs.maxPollTime {
			timeoutErr := &TimeoutError{Elapsed: elapsed.Round(time.Second).String()}
			gs.fail(sessionID, epoch, timeoutErr.Error())
			return
		}

		status, err := gs.remote.JobStatus(ctx, taskID)
		if err != nil {
			gs.fail(sessionID, epoch, userFacingMessage(err))
			return
		}

		switch status.TaskStatus {
		case TaskSucceeded:
			if status.VideoURL != "" {
				// Commit quota before reporting done. Accounting failure is
				// logged and swallowed: the result is already paid for in
				// compute, the user gets it regardless.
				if _, err := gs.quota.ConsumeQuota(userID, Today()); err != nil {
					log.Warn().Err(err).Str("user_id", userID).Msg("quota consumption failed after successful generation")
				}
				gs.transition(sessionID, epoch, func(info *GenerationSessionInfo) {
					info.Status = StatusDone
					info.VideoURL = status.VideoURL
					info.ErrorMessage = ""
				})
				return
			}
			// SUCCEEDED without a result URL is treated as still running;
			// keep polling until the URL appears or the deadline fires.
		case TaskFailed:
			remoteErr := &RemoteJobFailure{TaskStatus: status.TaskStatus, Message: status.Message}
			gs.fail(sessionID, epoch, remoteErr.Error())
			return
		case TaskCanceled:
			gs.fail(sessionID, epoch, "the generation job was canceled")
			return
		}

		time.Sleep(gs.pollInterval)
	}
}

// GetSession returns a consistent snapshot of one session.
func (gs *GenerationService) GetSession(sessionID string) (GenerationSessionInfo, error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	sess, ok := gs.sessions[sessionID]
	if !ok {
		return GenerationSessionInfo{}, ErrGenerationSessionNotFound
	}
	return sess.info, nil
}

// CancelGeneration stops the session's poll loop and returns it to idle,
// keeping any task id or result already captured.
func (gs *GenerationService) CancelGeneration(sessionID string) error {
	gs.mu.Lock()
	sess, ok := gs.sessions[sessionID]
	if !ok {
		gs.mu.Unlock()
		return ErrGenerationSessionNotFound
	}
	sess.epoch++
	sess.info.Status = StatusIdle
	sess.info.ErrorMessage = ""
	sess.info.UpdatedAt = time.Now()
	snapshot := sess.info
	gs.mu.Unlock()

	gs.publish(snapshot)
	return nil
}

// ResetSession aborts any in-flight work and clears all result and error
// fields. The only way out of done or error.
func (gs *GenerationService) ResetSession(sessionID string) error {
	gs.mu.Lock()
	sess, ok := gs.sessions[sessionID]
	if !ok {
		gs.mu.Unlock()
		return ErrGenerationSessionNotFound
	}
	sess.epoch++
	sess.info = GenerationSessionInfo{
		SessionID: sessionID,
		UserID:    sess.info.UserID,
		Status:    StatusIdle,
		UpdatedAt: time.Now(),
	}
	snapshot := sess.info
	gs.mu.Unlock()

	gs.publish(snapshot)
	return nil
}

// transition applies a state change if the session still belongs to the
// given epoch. Returns false when the session was reset or superseded, in
// which case the caller must stop.
func (gs *GenerationService) transition(sessionID string, epoch uint64, mutate func(*GenerationSessionInfo)) bool {
	gs.mu.Lock()
	sess, ok := gs.sessions[sessionID]
	if !ok || sess.epoch != epoch {
		gs.mu.Unlock()
		return false
	}
	mutate(&sess.info)
	sess.info.UpdatedAt = time.Now()
	if sess.info.Terminal() {
		sess.finishedAt = sess.info.UpdatedAt
	}
	snapshot := sess.info
	gs.mu.Unlock()

	gs.publish(snapshot)
	return true
}

func (gs *GenerationService) fail(sessionID string, epoch uint64, message string) {
	gs.transition(sessionID, epoch, func(info *GenerationSessionInfo) {
		info.Status = StatusError
		info.ErrorMessage = message
	})
}

func (gs *GenerationService) alive(sessionID string, epoch uint64) bool {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	sess, ok := gs.sessions[sessionID]
	return ok && sess.epoch == epoch
}

func (gs *GenerationService) publish(info GenerationSessionInfo) {
	if gs.events != nil {
		gs.events.Publish(GenerationTopic(info.SessionID), info)
	}
}

func (gs *GenerationService) periodicCleanup() {
	ticker := time.NewTicker(1 * time.Minute)
	for range ticker.C {
		gs.CleanupFinishedSessions()
	}
}

// CleanupFinishedSessions drops terminal and idle sessions older than the
// retention window.
func (gs *GenerationService) CleanupFinishedSessions() {
	now := time.Now()
	gs.mu.Lock()
	defer gs.mu.Unlock()
	for id, sess := range gs.sessions {
		stale := sess.info.Terminal() && now.Sub(sess.finishedAt) > gs.retention
		abandoned := sess.info.Status == StatusIdle && now.Sub(sess.info.UpdatedAt) > gs.retention
		if stale || abandoned {
			delete(gs.sessions, id)
			if gs.activeByUser[sess.info.UserID] == id {
				delete(gs.activeByUser, sess.info.UserID)
			}
		}
	}
}

// userFacingMessage maps pipeline errors onto messages safe to show in the
// session's error field.
func userFacingMessage(err error) string {
	var validationErr *ValidationError
	var uploadErr *UploadError
	var submissionErr *SubmissionError
	var pollErr *PollError

	switch {
	case errors.As(err, &validationErr):
		return validationErr.Msg
	case errors.As(err, &uploadErr):
		return uploadErr.Msg
	case errors.As(err, &submissionErr):
		return submissionErr.Message
	case errors.As(err, &pollErr):
		return "network error while checking generation status"
	default:
		return err.Error()
	}
}
