package service

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"vitasurvey/internal/cache"
	"vitasurvey/internal/model"
	"vitasurvey/internal/repository"
	"vitasurvey/internal/survey"
)

var (
	ErrSessionNotFound = errors.New("survey session not found")
	ErrCatalogChanged  = errors.New("survey catalog changed since the session started")
)

const (
	sessionLockStripes   = 256
	defaultSubmitTimeout = 2 * time.Minute
)

// SessionView is what the API returns after every session operation
type SessionView struct {
	SessionID    string             `json:"sessionId"`
	State        model.SessionState `json:"state"`
	SubmissionID string             `json:"submissionId,omitempty"`
	Repositioned bool               `json:"repositioned,omitempty"`
	Current      *survey.View       `json:"current,omitempty"`
}

// SurveyService runs survey sessions. Session state lives in Redis between requests;
// requests on the same session are serialized in process.
type SurveyService struct {
	categoryRepo   repository.CategoryRepo
	memberRepo     repository.MemberRepo
	submissionRepo repository.SubmissionRepo
	treeCache      cache.TreeCache
	sessionCache   cache.SessionCache
	rules          survey.Rules
	logger         *zap.Logger
	broadcaster    Broadcaster
	forwarder      Forwarder
	submitTimeout  time.Duration

	locks [sessionLockStripes]sync.Mutex // picked by session id hash
}

// NewSurveyService creates a new survey service
func NewSurveyService(
	categoryRepo repository.CategoryRepo,
	memberRepo repository.MemberRepo,
	submissionRepo repository.SubmissionRepo,
	treeCache cache.TreeCache,
	sessionCache cache.SessionCache,
	rules survey.Rules,
	logger *zap.Logger,
) *SurveyService {
	return &SurveyService{
		categoryRepo:   categoryRepo,
		memberRepo:     memberRepo,
		submissionRepo: submissionRepo,
		treeCache:      treeCache,
		sessionCache:   sessionCache,
		rules:          rules,
		logger:         logger,
		submitTimeout:  defaultSubmitTimeout,
	}
}

// SetBroadcaster sets the WebSocket broadcaster
func (s *SurveyService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SetForwarder makes every submission go to f before it is stored
func (s *SurveyService) SetForwarder(f Forwarder) {
	s.forwarder = f
}

// SetSubmitTimeout sets how long a session may stay frozen in submission. A snapshot
// left submitting for longer (a crashed instance, a lost write) is reopened.
func (s *SurveyService) SetSubmitTimeout(d time.Duration) {
	s.submitTimeout = d
}

// StartSession opens a new session for memberID positioned on the first visible page
func (s *SurveyService) StartSession(ctx context.Context, memberID string) (*SessionView, error) {
	tree, err := s.loadTree(ctx)
	if err != nil {
		return nil, err
	}
	gender, err := s.memberRepo.GetGender(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("load member %s: %w", memberID, err)
	}

	filter := survey.Filter{Rules: s.rules, GenderOnFile: gender}
	for _, problem := range filter.Diagnose(tree) {
		s.logger.Debug("survey filter rule disabled", zap.String("reason", problem))
	}

	sess := survey.NewSession(tree, filter)
	if err := sess.Start(); err != nil {
		return nil, err
	}

	now := time.Now()
	snap := &model.SessionSnapshot{
		ID:           uuid.NewString(),
		MemberID:     memberID,
		GenderOnFile: gender,
		TreeVersion:  tree.Version(),
		CreatedAt:    now,
	}
	if err := s.treeCache.Pin(ctx, tree); err != nil {
		s.logger.Warn("tree pin failed", zap.String("tree_version", snap.TreeVersion), zap.Error(err))
	}
	if err := s.save(ctx, snap, sess); err != nil {
		return nil, err
	}

	s.logger.Info("survey session started",
		zap.String("session_id", snap.ID),
		zap.String("member_id", memberID))
	s.notifyProgress(snap)
	return s.view(snap, sess), nil
}

// GetSession returns the current page of a session
func (s *SurveyService) GetSession(ctx context.Context, memberID, sessionID string) (*SessionView, error) {
	var out *SessionView
	err := s.withSession(ctx, memberID, sessionID, func(snap *model.SessionSnapshot, sess *survey.Session) error {
		out = s.view(snap, sess)
		return nil
	})
	return out, err
}

// Answer records an answer. The visible tree is recomputed on the next read.
func (s *SurveyService) Answer(ctx context.Context, memberID, sessionID string, questionID int, a model.Answer) (*SessionView, error) {
	return s.mutate(ctx, memberID, sessionID, func(sess *survey.Session) error {
		return sess.Answer(questionID, a)
	})
}

// Toggle flips one option of a multiple choice answer
func (s *SurveyService) Toggle(ctx context.Context, memberID, sessionID string, questionID, optionID int) (*SessionView, error) {
	return s.mutate(ctx, memberID, sessionID, func(sess *survey.Session) error {
		return sess.Toggle(questionID, optionID)
	})
}

// Prev moves the session one page back
func (s *SurveyService) Prev(ctx context.Context, memberID, sessionID string) (*SessionView, error) {
	return s.mutate(ctx, memberID, sessionID, func(sess *survey.Session) error {
		return sess.Retreat()
	})
}

// Next moves the session forward. On the last page it submits the survey; a
// completed session is removed from the cache.
func (s *SurveyService) Next(ctx context.Context, memberID, sessionID string) (*SessionView, error) {
	var out *SessionView
	err := s.withSession(ctx, memberID, sessionID, func(snap *model.SessionSnapshot, sess *survey.Session) error {
		var submissionID string
		submit := survey.SubmitterFunc(func(ctx context.Context, responses []model.ResponseItem) error {
			// other instances see the session frozen while the insert runs
			if err := s.save(ctx, snap, sess); err != nil {
				return err
			}
			submission := &model.Submission{
				MemberID:  memberID,
				SessionID: sessionID,
				Responses: responses,
			}
			if s.forwarder != nil {
				if err := s.forwarder.Forward(ctx, submission); err != nil {
					return fmt.Errorf("forward: %w", err)
				}
			}
			id, err := s.submissionRepo.Create(ctx, submission)
			if err != nil {
				return err
			}
			submissionID = id
			return nil
		})

		step, err := sess.Advance(ctx, submit)
		if errors.Is(err, survey.ErrSubmissionFailed) {
			s.logger.Error("survey submission failed",
				zap.String("session_id", sessionID),
				zap.Error(err))
			// the caller may be gone by now; the answers must not stay frozen
			if saveErr := s.save(context.WithoutCancel(ctx), snap, sess); saveErr != nil {
				s.logger.Error("failed to restore session after submission failure",
					zap.String("session_id", sessionID),
					zap.Error(saveErr))
			}
			return err
		}
		if err != nil {
			return err
		}

		if step == survey.StepCompleted {
			out = s.complete(context.WithoutCancel(ctx), snap, sess, submissionID)
			return nil
		}
		if err := s.save(ctx, snap, sess); err != nil {
			return err
		}
		s.notifyProgress(snap)
		out = s.view(snap, sess)
		out.Repositioned = step == survey.StepRepositioned
		return nil
	})
	return out, err
}

// Abandon discards a session and everything answered in it
func (s *SurveyService) Abandon(ctx context.Context, memberID, sessionID string) error {
	return s.withSession(ctx, memberID, sessionID, func(snap *model.SessionSnapshot, sess *survey.Session) error {
		sess.Abandon()
		if err := s.sessionCache.Delete(ctx, sessionID); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
		s.logger.Info("survey session abandoned", zap.String("session_id", sessionID))
		return nil
	})
}

// ListSubmissions returns the member's finished surveys, newest first
func (s *SurveyService) ListSubmissions(ctx context.Context, memberID string) ([]*model.Submission, error) {
	return s.submissionRepo.GetByMemberID(ctx, memberID)
}

func (s *SurveyService) complete(ctx context.Context, snap *model.SessionSnapshot, sess *survey.Session, submissionID string) *SessionView {
	if err := s.sessionCache.Delete(ctx, snap.ID); err != nil {
		// the submission is stored; a stale snapshot only lingers until its TTL
		s.logger.Warn("failed to delete completed session",
			zap.String("session_id", snap.ID),
			zap.Error(err))
	}

	s.logger.Info("survey submitted",
		zap.String("session_id", snap.ID),
		zap.String("member_id", snap.MemberID),
		zap.String("submission_id", submissionID))
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToMember(snap.MemberID, MsgSurveyCompleted, map[string]interface{}{
			"sessionId":    snap.ID,
			"submissionId": submissionID,
		})
	}

	return &SessionView{
		SessionID:    snap.ID,
		State:        sess.State(),
		SubmissionID: submissionID,
	}
}

func (s *SurveyService) mutate(ctx context.Context, memberID, sessionID string, fn func(*survey.Session) error) (*SessionView, error) {
	var out *SessionView
	err := s.withSession(ctx, memberID, sessionID, func(snap *model.SessionSnapshot, sess *survey.Session) error {
		if err := fn(sess); err != nil {
			return err
		}
		if err := s.save(ctx, snap, sess); err != nil {
			return err
		}
		out = s.view(snap, sess)
		return nil
	})
	return out, err
}

// withSession loads a session under its lock and hands it to fn
func (s *SurveyService) withSession(ctx context.Context, memberID, sessionID string, fn func(*model.SessionSnapshot, *survey.Session) error) error {
	unlock := s.lock(sessionID)
	defer unlock()

	snap, err := s.sessionCache.Get(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	// another member's session is reported as missing
	if snap == nil || snap.MemberID != memberID {
		return ErrSessionNotFound
	}

	if snap.State == model.SessionSubmitting && time.Since(snap.UpdatedAt) > s.submitTimeout {
		s.logger.Warn("reopening session stuck in submission",
			zap.String("session_id", sessionID),
			zap.Time("updated_at", snap.UpdatedAt))
		snap.State = model.SessionActive
	}

	tree, err := s.sessionTree(ctx, snap)
	if err != nil {
		return err
	}
	filter := survey.Filter{Rules: s.rules, GenderOnFile: snap.GenderOnFile}
	return fn(snap, survey.RestoreSession(tree, filter, snap))
}

// sessionTree returns the tree a session started on: its pinned copy, or the live
// catalog while that still has the same version
func (s *SurveyService) sessionTree(ctx context.Context, snap *model.SessionSnapshot) (model.Tree, error) {
	if snap.TreeVersion != "" {
		pinned, err := s.treeCache.Pinned(ctx, snap.TreeVersion)
		if err != nil {
			s.logger.Warn("tree pin read failed", zap.String("tree_version", snap.TreeVersion), zap.Error(err))
		}
		if pinned != nil {
			return *pinned, nil
		}
	}

	tree, err := s.loadTree(ctx)
	if err != nil {
		return model.Tree{}, err
	}
	if snap.TreeVersion == "" {
		return tree, nil
	}
	if tree.Version() != snap.TreeVersion {
		return model.Tree{}, fmt.Errorf("%w: session %s", ErrCatalogChanged, snap.ID)
	}
	if err := s.treeCache.Pin(ctx, tree); err != nil {
		s.logger.Warn("tree pin failed", zap.String("tree_version", snap.TreeVersion), zap.Error(err))
	}
	return tree, nil
}

func (s *SurveyService) lock(sessionID string) func() {
	mu := s.lockFor(sessionID)
	mu.Lock()
	return mu.Unlock
}

// lockFor picks the session's stripe. Sessions sharing a stripe serialize on each other,
// which only costs latency.
func (s *SurveyService) lockFor(sessionID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(sessionID))
	return &s.locks[h.Sum32()%sessionLockStripes]
}

func (s *SurveyService) save(ctx context.Context, snap *model.SessionSnapshot, sess *survey.Session) error {
	sess.Snapshot(snap)
	snap.UpdatedAt = time.Now()
	if err := s.sessionCache.Set(ctx, snap); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// loadTree reads the catalog from the tree cache, falling back to Mongo. Cache errors
// are logged and ignored.
func (s *SurveyService) loadTree(ctx context.Context) (model.Tree, error) {
	cached, err := s.treeCache.Get(ctx)
	if err != nil {
		s.logger.Warn("tree cache read failed", zap.Error(err))
	}
	if cached != nil {
		return *cached, nil
	}

	tree, err := s.categoryRepo.LoadTree(ctx)
	if err != nil {
		return model.Tree{}, fmt.Errorf("load survey tree: %w", err)
	}
	if err := s.treeCache.Set(ctx, tree); err != nil {
		s.logger.Warn("tree cache write failed", zap.Error(err))
	}
	return tree, nil
}

func (s *SurveyService) view(snap *model.SessionSnapshot, sess *survey.Session) *SessionView {
	out := &SessionView{
		SessionID: snap.ID,
		State:     sess.State(),
	}
	if cur, err := sess.Current(); err == nil {
		out.Current = &cur
	}
	return out
}

func (s *SurveyService) notifyProgress(snap *model.SessionSnapshot) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastToMember(snap.MemberID, MsgSurveyProgress, map[string]interface{}{
		"sessionId":     snap.ID,
		"categoryId":    snap.CategoryID,
		"subCategoryId": snap.SubCategoryID,
		"answered":      len(snap.Answers),
	})
}
