package cache

import (
	"sync"

	"github.com/IvanBrykalov/tagcloud/internal/util"
	"github.com/IvanBrykalov/tagcloud/policy"
)

// totals are the store-wide running sums reported through Metrics.Size.
type totals struct {
	entries util.PaddedAtomicInt64
	bytes   util.PaddedAtomicInt64
}

// shard is an independent partition with its own lock, map and
// intrusive MRU↔LRU list.
type shard struct {
	// ---- guarded by mu ----
	mu       sync.Mutex
	m        map[string]*entry
	head     *entry // MRU
	tail     *entry // LRU
	len      int
	bytes    int64
	cap      int
	maxBytes int64 // 0 = unlimited

	pol policy.ShardPolicy
	opt *Options
	tot *totals

	// ---- hot counters, one cache line each ----
	_      util.CacheLinePad
	hits   util.PaddedAtomicUint64
	misses util.PaddedAtomicUint64
	evicts util.PaddedAtomicUint64
}

func newShard(capacity int, maxBytes int64, opt *Options, tot *totals) *shard {
	s := &shard{
		m:        make(map[string]*entry, capacity),
		cap:      capacity,
		maxBytes: maxBytes,
		opt:      opt,
		tot:      tot,
	}
	s.pol = opt.Policy.New(hooks{s: s})
	return s
}

// get returns a copy of the stored value.
func (s *shard) get(key string, now int64) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.m[key]
	if ok && e.exp != 0 && now > e.exp {
		s.evict(e, EvictTTL)
		s.report()
		ok = false
	}
	if !ok {
		s.misses.Add(1)
		s.opt.Metrics.Miss()
		return nil, false
	}
	s.pol.OnGet(e)
	s.hits.Add(1)
	s.opt.Metrics.Hit()
	return append([]byte(nil), e.val...), true
}

// set inserts or replaces key; val is already an owned copy.
func (s *shard) set(key string, val []byte, exp, now int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.m[key]; ok {
		delta := int64(len(val)) - e.size()
		e.val, e.exp = val, exp
		s.account(0, delta)
		s.pol.OnUpdate(e)
		s.enforce(now)
		return
	}

	e := &entry{key: key, val: val, exp: exp}
	s.m[key] = e
	if victim := s.pol.OnAdd(e); victim != nil {
		s.evict(victim.(*entry), EvictPolicy)
	}
	s.enforce(now)
}

func (s *shard) remove(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.m[key]
	if !ok {
		return false
	}
	s.pol.OnRemove(e)
	s.unlink(e)
	delete(s.m, key)
	s.report()
	return true
}

func (s *shard) length() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.len
}

// clear drops every entry without eviction callbacks.
func (s *shard) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.m {
		s.pol.OnRemove(e)
		s.unlink(e)
	}
	clear(s.m)
}

// -------------------- internals (mu held) --------------------

func (s *shard) pushFront(e *entry) {
	e.prev, e.next = nil, s.head
	if s.head != nil {
		s.head.prev = e
	}
	s.head = e
	if s.tail == nil {
		s.tail = e
	}
	s.account(1, e.size())
}

func (s *shard) moveToFront(e *entry) {
	if e == s.head {
		return
	}
	s.detach(e)
	e.prev, e.next = nil, s.head
	if s.head != nil {
		s.head.prev = e
	}
	s.head = e
	if s.tail == nil {
		s.tail = e
	}
}

func (s *shard) detach(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		s.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		s.tail = e.prev
	}
	e.prev, e.next = nil, nil
}

func (s *shard) unlink(e *entry) {
	s.detach(e)
	s.account(-1, -e.size())
}

func (s *shard) account(n int, b int64) {
	s.len += n
	s.bytes += b
	s.tot.entries.Add(int64(n))
	s.tot.bytes.Add(b)
}

func (s *shard) evict(e *entry, reason EvictReason) {
	s.pol.OnRemove(e)
	s.unlink(e)
	delete(s.m, e.key)
	s.evicts.Add(1)
	s.opt.Metrics.Evict(reason)
	if cb := s.opt.OnEvict; cb != nil {
		cb(e.key, reason)
	}
}

// enforce trims from the LRU end until both limits hold. Expired entries
// met at the tail are reported as TTL evictions.
func (s *shard) enforce(now int64) {
	for s.len > s.cap && s.tail != nil {
		s.evict(s.tail, s.tailReason(now, EvictPolicy))
	}
	for s.maxBytes > 0 && s.bytes > s.maxBytes && s.tail != nil {
		s.evict(s.tail, s.tailReason(now, EvictCapacity))
	}
	s.report()
}

func (s *shard) tailReason(now int64, fallback EvictReason) EvictReason {
	if t := s.tail; t.exp != 0 && now > t.exp {
		return EvictTTL
	}
	return fallback
}

func (s *shard) report() {
	s.opt.Metrics.Size(int(s.tot.entries.Load()), s.tot.bytes.Load())
}

// -------------------- policy hooks --------------------

// hooks exposes the shard list to its policy.
type hooks struct{ s *shard }

var _ policy.Hooks = hooks{}

func (h hooks) MoveToFront(n policy.Node) { h.s.moveToFront(n.(*entry)) }
func (h hooks) PushFront(n policy.Node)   { h.s.pushFront(n.(*entry)) }
