// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/ava-labs/hypercw/address"
	"github.com/ava-labs/hypercw/consts"
	"github.com/ava-labs/hypercw/state"

	hctrace "github.com/ava-labs/hypercw/trace"
)

// State layout
// 0x0/ (host metadata)
//   -> seq, height
// 0x1/ (instances)
//   -> [address] => Instance
// 0x2/ (instance index)
// 0x3/ (contract state spaces)
//   -> [len(address)] [address] => contract owned records
const (
	metaPrefix          byte = 0x0
	instancePrefix      byte = 0x1
	indexPrefix         byte = 0x2
	contractStatePrefix byte = 0x3
)

var (
	sequenceItem = state.NewItem[uint64](string([]byte{metaPrefix, 's'}))
	heightItem   = state.NewItem[uint64](string([]byte{metaPrefix, 'h'}))
	indexItem    = state.NewItem[[]string](string([]byte{indexPrefix}))
)

type Config struct {
	HRP             string `json:"hrp" yaml:"hrp"`
	MaxForwardDepth int    `json:"maxForwardDepth" yaml:"maxForwardDepth"`
	OutboxSize      int    `json:"outboxSize" yaml:"outboxSize"`
}

func NewDefaultConfig() Config {
	return Config{
		HRP:             consts.HRP,
		MaxForwardDepth: consts.MaxForwardDepth,
		OutboxSize:      1_024,
	}
}

// Instance records which code backs a contract address.
type Instance struct {
	Address string `json:"address"`
	Code    string `json:"code"`
	Label   string `json:"label"`
	Creator string `json:"creator"`
	Height  uint64 `json:"height"`
}

// Runtime is the host every contract call goes through. It serializes calls,
// gives each contract its own record space, buffers writes so a failed call
// leaves no trace, and routes forwarded messages.
type Runtime struct {
	cfg       Config
	log       logging.Logger
	tracer    trace.Tracer
	metrics   *metrics
	registry  *prometheus.Registry
	db        state.Mutable
	api       address.Validator
	addresser *address.Bech32
	executor  Executor
	publisher Publisher
	clock     func() time.Time

	lock  sync.RWMutex
	codes map[string]Contract
}

func New(
	log logging.Logger,
	tracer trace.Tracer,
	db state.Mutable,
	api address.Validator,
	cfg Config,
	opts ...Option,
) (*Runtime, error) {
	registry, metrics, err := newMetrics()
	if err != nil {
		return nil, err
	}
	outbox, err := NewOutbox(log, cfg.OutboxSize)
	if err != nil {
		return nil, err
	}
	r := &Runtime{
		cfg:       cfg,
		log:       log,
		tracer:    tracer,
		metrics:   metrics,
		registry:  registry,
		db:        db,
		api:       api,
		addresser: address.NewBech32(cfg.HRP),
		executor:  outbox,
		publisher: noopPublisher{},
		clock:     time.Now,
		codes:     make(map[string]Contract),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Registry returns the prometheus registry holding the runtime metrics.
func (r *Runtime) Registry() *prometheus.Registry {
	return r.registry
}

// Executor returns the downstream executor forwarded messages go to.
func (r *Runtime) Executor() Executor {
	return r.executor
}

func (r *Runtime) Register(name string, c Contract) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.codes[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateCode, name)
	}
	r.codes[name] = c
	r.log.Info("registered code", zap.String("code", name))
	return nil
}

// Codes returns the registered code names, sorted.
func (r *Runtime) Codes() []string {
	r.lock.RLock()
	defer r.lock.RUnlock()

	names := maps.Keys(r.codes)
	slices.Sort(names)
	return names
}

type pendingMsg struct {
	sender string
	msg    CosmosMsg
}

// call is the state shared by a top-level call and everything it forwards.
type call struct {
	mu      state.Mutable
	env     Env
	pending []pendingMsg
}

// Instantiate creates a new instance of [code] and runs its instantiate entry
// point. It returns the address of the new instance.
func (r *Runtime) Instantiate(
	ctx context.Context,
	code string,
	sender string,
	label string,
	msg []byte,
) (string, *Response, error) {
	ctx, span := r.tracer.Start(ctx, "Runtime.Instantiate", hctrace.Call(code, "", sender))
	defer span.End()

	if err := r.checkCall(sender, msg); err != nil {
		return "", nil, err
	}
	if len(label) > consts.MaxLabelLen {
		return "", nil, fmt.Errorf("%w: %d > %d", ErrLabelTooLong, len(label), consts.MaxLabelLen)
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	c, ok := r.codes[code]
	if !ok {
		return "", nil, fmt.Errorf("%w: %s", ErrUnknownCode, code)
	}

	cache := state.NewCache(r.db)
	env, err := r.nextEnv(ctx, cache)
	if err != nil {
		return "", nil, err
	}
	seq, err := r.nextSequence(ctx, cache)
	if err != nil {
		return "", nil, err
	}
	addr, err := r.deriveAddress(code, label, seq)
	if err != nil {
		return "", nil, err
	}
	inst := Instance{
		Address: addr,
		Code:    code,
		Label:   label,
		Creator: sender,
		Height:  env.BlockHeight,
	}
	if err := r.storeInstance(ctx, cache, inst); err != nil {
		return "", nil, err
	}

	env.ContractAddress = addr
	cl := &call{mu: cache, env: env}
	resp, err := c.Instantiate(ctx, r.deps(cache, addr), env, MessageInfo{Sender: sender}, msg)
	if err == nil {
		err = r.dispatchAll(ctx, cl, addr, resp, 1)
	}
	if err == nil {
		err = r.flush(ctx, cl)
	}
	if err != nil {
		r.metrics.failed.Inc()
		r.log.Debug("instantiate failed",
			zap.String("code", code),
			zap.String("sender", sender),
			zap.Error(err),
		)
		return "", nil, hctrace.Fail(span, fmt.Errorf("instantiate %s: %w", code, err))
	}
	if err := r.commit(ctx, cache); err != nil {
		return "", nil, err
	}

	r.metrics.instantiated.Inc()
	r.log.Info("instantiated contract",
		zap.String("code", code),
		zap.String("address", addr),
		zap.String("creator", sender),
		zap.Uint64("height", env.BlockHeight),
	)
	r.publisher.Publish(newEvent(InstantiateEvent, env, sender, resp))
	return addr, resp, nil
}

// Execute runs [msg] against [contract] on behalf of [sender]. Either every
// write made by the call (and by the calls it forwards) is committed, or none
// is.
func (r *Runtime) Execute(ctx context.Context, contract string, sender string, msg []byte) (*Response, error) {
	start := time.Now()
	ctx, span := r.tracer.Start(ctx, "Runtime.Execute", hctrace.Call("", contract, sender))
	defer span.End()

	if err := r.checkCall(sender, msg); err != nil {
		return nil, err
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	cache := state.NewCache(r.db)
	env, err := r.nextEnv(ctx, cache)
	if err != nil {
		return nil, err
	}
	cl := &call{mu: cache, env: env}
	resp, err := r.execute(ctx, cl, contract, sender, msg, 0)
	if err == nil {
		err = r.flush(ctx, cl)
	}
	if err != nil {
		r.metrics.failed.Inc()
		r.log.Debug("execute failed",
			zap.String("contract", contract),
			zap.String("sender", sender),
			zap.Error(err),
		)
		return nil, hctrace.Fail(span, err)
	}
	if err := r.commit(ctx, cache); err != nil {
		return nil, err
	}

	r.metrics.executed.Inc()
	r.metrics.executeDuration.Observe(float64(time.Since(start)))
	env.ContractAddress = contract
	r.publisher.Publish(newEvent(ExecuteEvent, env, sender, resp))
	return resp, nil
}

// Simulate runs an execute without committing anything and reports the
// state keys it touched.
func (r *Runtime) Simulate(ctx context.Context, contract string, sender string, msg []byte) (*Response, state.Keys, error) {
	ctx, span := r.tracer.Start(ctx, "Runtime.Simulate", hctrace.Call("", contract, sender))
	defer span.End()

	if err := r.checkCall(sender, msg); err != nil {
		return nil, nil, err
	}

	r.lock.RLock()
	defer r.lock.RUnlock()

	recorder := state.NewRecorder(r.db)
	env, err := r.nextEnv(ctx, recorder)
	if err != nil {
		return nil, nil, err
	}
	cl := &call{mu: recorder, env: env}
	resp, err := r.execute(ctx, cl, contract, sender, msg, 0)
	return resp, recorder.Keys(), hctrace.Fail(span, err)
}

// Query runs a read-only query against [contract].
func (r *Runtime) Query(ctx context.Context, contract string, msg []byte) ([]byte, error) {
	ctx, span := r.tracer.Start(ctx, "Runtime.Query", hctrace.Call("", contract, ""))
	defer span.End()

	if len(msg) > consts.MaxMessageSize {
		return nil, ErrMessageTooLarge
	}

	r.lock.RLock()
	defer r.lock.RUnlock()

	inst, err := r.loadInstance(ctx, r.db, contract)
	if err != nil {
		return nil, err
	}
	c, ok := r.codes[inst.Code]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCode, inst.Code)
	}
	height, _, err := heightItem.MayLoad(ctx, r.db)
	if err != nil {
		return nil, err
	}
	env := Env{
		BlockHeight:     height,
		BlockTime:       r.clock(),
		ContractAddress: contract,
	}
	ro := state.ReadOnly(r.db)
	res, err := c.Query(ctx, r.deps(ro, contract), env, msg)
	if err != nil {
		return nil, err
	}
	r.metrics.queried.Inc()
	return res, nil
}

// Instance returns the instance registered at [contract].
func (r *Runtime) Instance(ctx context.Context, contract string) (Instance, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return r.loadInstance(ctx, r.db, contract)
}

// Instances returns every instance in creation order.
func (r *Runtime) Instances(ctx context.Context) ([]Instance, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	addrs, _, err := indexItem.MayLoad(ctx, r.db)
	if err != nil {
		return nil, err
	}
	instances := make([]Instance, 0, len(addrs))
	for _, addr := range addrs {
		inst, err := r.loadInstance(ctx, r.db, addr)
		if err != nil {
			return nil, err
		}
		instances = append(instances, inst)
	}
	return instances, nil
}

// ContractVersion returns the version stamped by [contract] at instantiation.
func (r *Runtime) ContractVersion(ctx context.Context, contract string) (ContractVersion, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	if _, err := r.loadInstance(ctx, r.db, contract); err != nil {
		return ContractVersion{}, err
	}
	return GetContractVersion(ctx, state.NewPrefixed(contractStateKey(contract), state.ReadOnly(r.db)))
}

func (r *Runtime) execute(
	ctx context.Context,
	cl *call,
	contract string,
	sender string,
	msg []byte,
	depth int,
) (*Response, error) {
	inst, err := r.loadInstance(ctx, cl.mu, contract)
	if err != nil {
		return nil, err
	}
	c, ok := r.codes[inst.Code]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCode, inst.Code)
	}
	env := cl.env
	env.ContractAddress = contract
	resp, err := c.Execute(ctx, r.deps(cl.mu, contract), env, MessageInfo{Sender: sender}, msg)
	if err != nil {
		return nil, err
	}
	if err := r.dispatchAll(ctx, cl, contract, resp, depth+1); err != nil {
		return nil, err
	}
	return resp, nil
}

func (r *Runtime) dispatchAll(ctx context.Context, cl *call, sender string, resp *Response, depth int) error {
	for _, sub := range resp.Messages {
		if err := r.dispatch(ctx, cl, sender, sub.Msg, depth); err != nil {
			return fmt.Errorf("%w: %s from %s: %w", ErrForwardingFailed, sub.Msg.Kind(), sender, err)
		}
	}
	return nil
}

// dispatch runs a forwarded contract call in place, sharing the caller's
// buffered state. Anything else is queued for the executor.
func (r *Runtime) dispatch(ctx context.Context, cl *call, sender string, msg CosmosMsg, depth int) error {
	if depth > r.cfg.MaxForwardDepth {
		return fmt.Errorf("%w: %d", ErrMaxDepth, r.cfg.MaxForwardDepth)
	}
	if exec, ok := msg.WasmExecute(); ok {
		_, exists, err := r.instance(ctx, cl.mu, exec.ContractAddr)
		if err != nil {
			return err
		}
		if exists {
			_, err := r.execute(ctx, cl, exec.ContractAddr, sender, exec.Msg, depth)
			return err
		}
	}
	cl.pending = append(cl.pending, pendingMsg{sender: sender, msg: msg})
	return nil
}

// flush hands queued messages to the executor in emission order.
func (r *Runtime) flush(ctx context.Context, cl *call) error {
	for _, p := range cl.pending {
		if err := r.executor.Execute(ctx, cl.env, p.sender, p.msg); err != nil {
			return fmt.Errorf("%w: %s from %s: %w", ErrForwardingFailed, p.msg.Kind(), p.sender, err)
		}
		r.metrics.forwarded.Inc()
	}
	return nil
}

func (r *Runtime) commit(ctx context.Context, cache *state.Cache) error {
	changes := cache.Len()
	if err := cache.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit: %w", state.ErrStore, err)
	}
	r.metrics.stateChanges.Add(float64(changes))
	return nil
}

func (r *Runtime) checkCall(sender string, msg []byte) error {
	if _, err := r.api.AddrValidate(sender); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSender, err)
	}
	if len(msg) > consts.MaxMessageSize {
		return fmt.Errorf("%w: %d > %d", ErrMessageTooLarge, len(msg), consts.MaxMessageSize)
	}
	return nil
}

func (r *Runtime) deps(mu state.Mutable, contract string) Deps {
	return Deps{
		Storage: state.NewPrefixed(contractStateKey(contract), mu),
		API:     r.api,
	}
}

func (r *Runtime) nextEnv(ctx context.Context, mu state.Mutable) (Env, error) {
	height, _, err := heightItem.MayLoad(ctx, mu)
	if err != nil {
		return Env{}, err
	}
	height++
	if err := heightItem.Save(ctx, mu, height); err != nil {
		return Env{}, err
	}
	return Env{BlockHeight: height, BlockTime: r.clock()}, nil
}

func (r *Runtime) nextSequence(ctx context.Context, mu state.Mutable) (uint64, error) {
	seq, _, err := sequenceItem.MayLoad(ctx, mu)
	if err != nil {
		return 0, err
	}
	seq++
	return seq, sequenceItem.Save(ctx, mu, seq)
}

// deriveAddress hashes the code name, label and instance sequence into a
// 32 byte bech32 payload.
func (r *Runtime) deriveAddress(code string, label string, seq uint64) (string, error) {
	h := sha256.New()
	_, _ = h.Write([]byte(code))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(label))
	_, _ = h.Write(binary.BigEndian.AppendUint64(nil, seq))
	return r.addresser.Encode(h.Sum(nil))
}

func (r *Runtime) storeInstance(ctx context.Context, mu state.Mutable, inst Instance) error {
	if err := instanceItem(inst.Address).Save(ctx, mu, inst); err != nil {
		return err
	}
	addrs, _, err := indexItem.MayLoad(ctx, mu)
	if err != nil {
		return err
	}
	return indexItem.Save(ctx, mu, append(addrs, inst.Address))
}

func (r *Runtime) instance(ctx context.Context, im state.Immutable, contract string) (Instance, bool, error) {
	return instanceItem(contract).MayLoad(ctx, im)
}

func (r *Runtime) loadInstance(ctx context.Context, im state.Immutable, contract string) (Instance, error) {
	inst, exists, err := r.instance(ctx, im, contract)
	if err != nil {
		return Instance{}, err
	}
	if !exists {
		return Instance{}, fmt.Errorf("%w: %s", ErrUnknownContract, contract)
	}
	return inst, nil
}

func instanceItem(contract string) state.Item[Instance] {
	k := make([]byte, 0, 1+len(contract))
	k = append(k, instancePrefix)
	k = append(k, contract...)
	return state.NewItem[Instance](string(k))
}

// [contractStatePrefix] + [len(address)] + [address]
func contractStateKey(contract string) []byte {
	k := make([]byte, 0, 2+len(contract))
	k = append(k, contractStatePrefix, byte(len(contract)))
	k = append(k, contract...)
	return k
}
