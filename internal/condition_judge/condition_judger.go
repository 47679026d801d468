package conditionjudge

//go:generate go tool mockgen -source=$GOFILE -destination=mock/$GOFILE -package=mock

import (
	"errors"
	"fmt"
)

var (
	// ErrNoHooks is returned when a hook event arrives for a key without a hook.
	ErrNoHooks = errors.New("no hooks")
	// ErrUnsatisfied is returned by Close when calls still wait for requirements.
	ErrUnsatisfied = errors.New("unsatisfied requirements")
)

type IConditionJudger[K comparable, S any, T any] interface {
	IsHookExist(key K) bool
	HookEvent(key K, value S) (bool, error)
	KeyEvent(key K) error
}

// ConditionJudger runs a hook directly once every key it requires has been
// seen. Calls arriving earlier are pre-processed into T and replayed when the
// last requirement arrives.
type ConditionJudger[K comparable, S any, T any] struct {
	preProcessFunc   PreProcessFunc[S, T]
	satisfiedHooks   map[K]func(S) error
	unsatisfiedHooks map[K][]*waitHook[K, S, T]
	hooks            map[K]*waitHook[K, S, T]
}

type PreProcessFunc[S any, T any] func(S) (T, error)

type waitHook[K comparable, S any, T any] struct {
	key              K
	normalPathFunc   func(S) error
	abnormalPathFunc func(T) error
	callParams       []T
	unsatisfiedCount int
}

type Hook[K comparable, S any, T any] interface {
	NormalPath(S) error
	AbnormalPath(T) error
	Requirements() []K
}

func NewConditionJudger[K comparable, S any, T any](hookMap map[K]Hook[K, S, T], preProcessFunc PreProcessFunc[S, T]) *ConditionJudger[K, S, T] {
	satisfiedHooks := make(map[K]func(S) error, len(hookMap))
	unsatisfiedHooks := make(map[K][]*waitHook[K, S, T])
	hooks := make(map[K]*waitHook[K, S, T], len(hookMap))
	for key, hook := range hookMap {
		requirements := uniq(hook.Requirements())

		if len(requirements) == 0 {
			satisfiedHooks[key] = hook.NormalPath
			continue
		}

		hookValue := &waitHook[K, S, T]{
			key:              key,
			normalPathFunc:   hook.NormalPath,
			abnormalPathFunc: hook.AbnormalPath,
			unsatisfiedCount: len(requirements),
		}
		hooks[key] = hookValue
		for _, requirePart := range requirements {
			unsatisfiedHooks[requirePart] = append(unsatisfiedHooks[requirePart], hookValue)
		}
	}

	return &ConditionJudger[K, S, T]{
		preProcessFunc:   preProcessFunc,
		satisfiedHooks:   satisfiedHooks,
		unsatisfiedHooks: unsatisfiedHooks,
		hooks:            hooks,
	}
}

func (w *ConditionJudger[K, S, T]) IsHookExist(key K) bool {
	if _, ok := w.satisfiedHooks[key]; ok {
		return true
	}
	_, ok := w.hooks[key]

	return ok
}

// HookEvent runs the hook of key if its requirements are met and reports
// whether it ran. Otherwise value is pre-processed and kept for later.
func (w *ConditionJudger[K, S, T]) HookEvent(key K, value S) (bool, error) {
	if fn := w.satisfiedHooks[key]; fn != nil {
		err := fn(value)
		if err != nil {
			return false, fmt.Errorf("failed to execute hook: %w", err)
		}

		return true, nil
	}

	hookValue, ok := w.hooks[key]
	if !ok {
		return false, fmt.Errorf("%w: %v", ErrNoHooks, key)
	}

	callParam, err := w.preProcessFunc(value)
	if err != nil {
		return false, fmt.Errorf("failed to pre-process: %w", err)
	}
	hookValue.callParams = append(hookValue.callParams, callParam)

	return false, nil
}

// KeyEvent marks key as seen and replays the pending calls of every hook
// whose last requirement it was.
func (w *ConditionJudger[K, S, T]) KeyEvent(key K) error {
	hooks := w.unsatisfiedHooks[key]
	delete(w.unsatisfiedHooks, key)

	var errs []error
	for _, hook := range hooks {
		if hook.unsatisfiedCount <= 0 {
			continue
		}
		hook.unsatisfiedCount--
		if hook.unsatisfiedCount > 0 {
			continue
		}

		w.satisfiedHooks[hook.key] = hook.normalPathFunc
		delete(w.hooks, hook.key)

		for _, param := range hook.callParams {
			err := hook.abnormalPathFunc(param)
			if err != nil {
				errs = append(errs, fmt.Errorf("failed to execute hook(%v): %w", hook.key, err))
			}
		}
		hook.callParams = nil
	}
	if len(errs) != 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Close hands the calls that never ran to discard. It returns ErrUnsatisfied
// if there were any.
func (w *ConditionJudger[K, S, T]) Close(discard func(T)) error {
	var errs []error
	for key, hook := range w.hooks {
		if len(hook.callParams) == 0 {
			continue
		}
		for _, param := range hook.callParams {
			discard(param)
		}
		hook.callParams = nil
		errs = append(errs, fmt.Errorf("%w: hook(%v)", ErrUnsatisfied, key))
	}
	if len(errs) != 0 {
		return errors.Join(errs...)
	}

	return nil
}

func uniq[K comparable](keys []K) []K {
	seen := make(map[K]struct{}, len(keys))
	res := make([]K, 0, len(keys))
	for _, key := range keys {
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		res = append(res, key)
	}

	return res
}
