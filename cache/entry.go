package cache

// entry is an intrusive list element owned by a shard (head=MRU, tail=LRU).
type entry struct {
	key string
	val []byte // owned copy, never handed out

	prev *entry
	next *entry

	// exp is the absolute deadline in UnixNano; 0 means no TTL.
	exp int64
}

// Key implements policy.Node.
func (e *entry) Key() string { return e.key }

func (e *entry) size() int64 { return int64(len(e.val)) }
