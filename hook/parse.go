package hook

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/mazrean/formdata"
	conditionjudge "github.com/mazrean/formdata/internal/condition_judge"
	"github.com/valyala/bytebufferpool"
)

// ErrMissingRequiredPart is returned when the form ends before a hooked part's
// required parts were seen.
var ErrMissingRequiredPart = errors.New("missing required part")

// Parse decodes the form from src, collecting values and running hooks.
func (p *Parser) Parse(src formdata.Source) (err error) {
	dec, err := formdata.NewDecoder(src, p.boundary, p.decoderOptions...)
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	defer dec.Close()

	hsc := newHookSatisfactionChecker(p.hookMap, &p.parserConfig)
	defer func() {
		deferErr := hsc.Close()
		if deferErr != nil {
			err = errors.Join(err, deferErr)
		}
	}()

	err = p.parse(dec, hsc.IConditionJudger)

	return
}

// ParseReader is Parse reading the form from r.
func (p *Parser) ParseReader(r io.Reader) error {
	return p.Parse(formdata.NewReaderSource(r, 0))
}

func (p *Parser) parse(dec *formdata.Decoder, hsc conditionjudge.IConditionJudger[string, *normalParam, *abnormalParam]) error {
	for field, err := range dec.Fields() {
		if err != nil {
			return fmt.Errorf("failed to read next field: %w", err)
		}

		name := field.Name()
		if hsc.IsHookExist(name) {
			_, err := hsc.HookEvent(name, &normalParam{
				r: field,
				h: field.Header(),
			})
			if err != nil {
				return fmt.Errorf("failed to run or set hook: %w", err)
			}
		} else {
			if formdata.DataSize(len(name)) > p.maxMemSize {
				return formdata.ErrTooLargeForm
			}
			p.maxMemSize -= formdata.DataSize(len(name))

			b := new(bytes.Buffer)
			n, err := io.CopyN(b, field, int64(p.maxMemSize)+1)
			if err != nil && !errors.Is(err, io.EOF) {
				return fmt.Errorf("failed to copy field: %w", err)
			}
			if formdata.DataSize(n) > p.maxMemSize {
				return formdata.ErrTooLargeForm
			}
			p.maxMemSize -= formdata.DataSize(n)

			p.valueMap[name] = append(p.valueMap[name], Value{
				content: b.Bytes(),
				header:  field.Header(),
			})
		}

		err = hsc.KeyEvent(name)
		if err != nil {
			return fmt.Errorf("failed to run satisfied hook: %w", err)
		}
	}

	return nil
}

type hookSatisfactionChecker struct {
	conditionjudge.IConditionJudger[string, *normalParam, *abnormalParam]
	judger *conditionjudge.ConditionJudger[string, *normalParam, *abnormalParam]
}

func newHookSatisfactionChecker(streamHooks map[string]streamHook, config *parserConfig) *hookSatisfactionChecker {
	judgeHooks := make(map[string]conditionjudge.Hook[string, *normalParam, *abnormalParam], len(streamHooks))
	for name, hook := range streamHooks {
		h := judgeHook(hook)
		judgeHooks[name] = &h
	}

	preProcess := &preProcessor{
		config: config,
	}
	judger := conditionjudge.NewConditionJudger(judgeHooks, preProcess.run)

	return &hookSatisfactionChecker{
		IConditionJudger: judger,
		judger:           judger,
	}
}

func (wh *hookSatisfactionChecker) Close() error {
	err := wh.judger.Close(func(param *abnormalParam) {
		_ = param.content.Close()
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMissingRequiredPart, err)
	}

	return nil
}

type normalParam struct {
	r io.Reader
	h formdata.Header
}

type abnormalParam struct {
	content io.ReadCloser
	header  formdata.Header
}

// preProcessor holds back a hooked part in a pooled buffer until its hook can run.
type preProcessor struct {
	config *parserConfig
}

var bufPool bytebufferpool.Pool

func (pp *preProcessor) run(normalParam *normalParam) (*abnormalParam, error) {
	buf := bufPool.Get()

	memLimit := min(pp.config.maxMemFileSize, pp.config.maxMemSize)
	n, err := io.CopyN(buf, normalParam.r, int64(memLimit)+1)
	if err != nil && !errors.Is(err, io.EOF) {
		bufPool.Put(buf)
		return nil, fmt.Errorf("failed to copy: %w", err)
	}
	if formdata.DataSize(n) > memLimit {
		bufPool.Put(buf)
		return nil, fmt.Errorf("%w: %s is held back before its required parts", formdata.ErrTooLargeForm, normalParam.h.Name())
	}

	size := formdata.DataSize(buf.Len())
	pp.config.maxMemSize -= size
	pp.config.maxMemFileSize -= size

	return &abnormalParam{
		content: &customReadCloser{
			Reader: bytes.NewReader(buf.B),
			closeFunc: func() error {
				bufPool.Put(buf)
				pp.config.maxMemSize += size
				pp.config.maxMemFileSize += size
				return nil
			},
		},
		header: normalParam.h,
	}, nil
}

type judgeHook struct {
	fn           StreamHookFunc
	requireParts []string
}

func (jh judgeHook) NormalPath(normalParam *normalParam) error {
	return jh.fn(normalParam.r, normalParam.h)
}

func (jh judgeHook) AbnormalPath(abnormalParam *abnormalParam) error {
	defer abnormalParam.content.Close()

	return jh.fn(abnormalParam.content, abnormalParam.header)
}

func (jh judgeHook) Requirements() []string {
	return jh.requireParts
}

type customReadCloser struct {
	io.Reader
	closeFunc func() error
	closed    bool
}

func (cc *customReadCloser) Close() error {
	if cc.closed {
		return nil
	}
	cc.closed = true

	return cc.closeFunc()
}
