package service

import "errors"

var (
	// ErrEngineInvalidPayload — движок вернул путь, нарушающий контракт
	// (не ровно 3 события или пустые поля). Наружу уходит как GenerationFailed.
	ErrEngineInvalidPayload = errors.New("generation engine returned an invalid alternative path payload")
)
