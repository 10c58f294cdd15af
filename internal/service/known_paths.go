package service

import "sync"

// KnownPaths is the set of post uids that render directly. A uid outside the
// set gets the loading shell first and joins the set once its detail resolves.
type KnownPaths struct {
	mu   sync.RWMutex
	uids map[string]struct{}
}

func NewKnownPaths(uids ...string) *KnownPaths {
	k := &KnownPaths{uids: make(map[string]struct{}, len(uids))}
	for _, uid := range uids {
		k.uids[uid] = struct{}{}
	}
	return k
}

func (k *KnownPaths) Has(uid string) bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	_, ok := k.uids[uid]
	return ok
}

func (k *KnownPaths) Add(uid string) {
	if uid == "" {
		return
	}
	k.mu.Lock()
	k.uids[uid] = struct{}{}
	k.mu.Unlock()
}

// Replace swaps the whole set, e.g. after listing the posts again.
func (k *KnownPaths) Replace(uids []string) {
	next := make(map[string]struct{}, len(uids))
	for _, uid := range uids {
		next[uid] = struct{}{}
	}
	k.mu.Lock()
	k.uids = next
	k.mu.Unlock()
}

func (k *KnownPaths) Len() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.uids)
}
