package flow

import (
	"context"
	"errors"

	"ipo-readiness/internal/assessment"
	apperrors "ipo-readiness/internal/common/errors"
	"ipo-readiness/internal/store"
)

// Classify maps the domain sentinels onto workflow error codes. Errors it does
// not recognise are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var stdErr *apperrors.StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}

	switch {
	case errors.Is(err, assessment.ErrUnknownTrack):
		return apperrors.NewUnknownTrackError(err.Error())
	case errors.Is(err, assessment.ErrIncompleteAnswers):
		return apperrors.NewIncompleteAnswerSetError(err.Error())
	case errors.Is(err, assessment.ErrUnknownOption), errors.Is(err, assessment.ErrUnknownQuestion):
		return apperrors.NewUnknownOptionLabelError(err.Error())
	case errors.Is(err, assessment.ErrDuplicateAnswer),
		errors.Is(err, assessment.ErrWeightMismatch),
		errors.Is(err, ErrInvalidSubmission):
		return apperrors.NewInvalidInputError(err.Error())
	case errors.Is(err, ErrReportGeneration):
		return apperrors.NewReportRenderFailedError(err)
	case errors.Is(err, store.ErrSessionNotFound):
		return apperrors.NewSessionNotFoundError(err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewTimeoutError("assessment", err)
	}
	return err
}

// ClassifyJob classifies an error returned while ctx was running. Once ctx's
// deadline has passed the job reports a timeout, whatever the driver made of
// the cancellation.
func ClassifyJob(ctx context.Context, err error) error {
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperrors.NewTimeoutError("assessment", err)
	}
	return Classify(err)
}
