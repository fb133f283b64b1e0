package ntfs

import (
	"container/list"
	"reflect"
	"sync"

	"github.com/dsoprea/go-logging"
)

// DefaultMftEntryCacheCapacity is used by NewMftEntryVector when the caller
// doesn't have a specific capacity in mind. It is deliberately small: the
// cache exists to avoid redundant re-parsing across repeated EntryByIndex /
// EntryByFileReference lookups, not to hold the whole MFT in memory.
// Extension-record walks do not go through it (see loadExtensionEntry).
const DefaultMftEntryCacheCapacity = 256

// MftEntryCache is a fixed-capacity, least-recently-used cache of parsed
// MftEntry values keyed by MFT index. It exists so that repeated lookups
// through an MftEntryVector don't re-decode the same record, while bounding
// memory use on a large volume.
type MftEntryCache struct {
	mu       sync.Mutex
	capacity int
	entries  map[uint64]*list.Element
	order    *list.List
}

type mftCacheItem struct {
	index uint64
	entry *MftEntry
}

// NewMftEntryCache builds an MftEntryCache holding up to capacity entries.
func NewMftEntryCache(capacity int) *MftEntryCache {
	if capacity <= 0 {
		capacity = DefaultMftEntryCacheCapacity
	}

	return &MftEntryCache{
		capacity: capacity,
		entries:  make(map[uint64]*list.Element),
		order:    list.New(),
	}
}

// Get returns the cached entry for index, promoting it to most-recently-used,
// or (nil, false) on a miss.
func (mec *MftEntryCache) Get(index uint64) (*MftEntry, bool) {
	mec.mu.Lock()
	defer mec.mu.Unlock()

	elem, found := mec.entries[index]
	if found != true {
		return nil, false
	}

	mec.order.MoveToFront(elem)

	return elem.Value.(*mftCacheItem).entry, true
}

// Put inserts or replaces the cached entry for index, evicting the
// least-recently-used entry if the cache is at capacity.
func (mec *MftEntryCache) Put(index uint64, entry *MftEntry) {
	mec.mu.Lock()
	defer mec.mu.Unlock()

	if elem, found := mec.entries[index]; found == true {
		elem.Value.(*mftCacheItem).entry = entry
		mec.order.MoveToFront(elem)

		return
	}

	elem := mec.order.PushFront(&mftCacheItem{index: index, entry: entry})
	mec.entries[index] = elem

	for mec.order.Len() > mec.capacity {
		oldest := mec.order.Back()
		if oldest == nil {
			break
		}

		mec.order.Remove(oldest)
		delete(mec.entries, oldest.Value.(*mftCacheItem).index)
	}
}

// MftEntryVector is a lazy, vector-like view over every record in the MFT:
// index Y resolves to MftEntry Y, parsing and caching records on first
// access through an MftEntryCache.
type MftEntryVector struct {
	source VolumeSource
	volume *VolumeHeader
	stream *ClusterRunReader
	cache  *MftEntryCache
}

// NewMftEntryVector builds an MftEntryVector over the $MFT's own data
// stream. stream is the cluster-run reader over the $MFT's $DATA attribute
// (built during volume bootstrap -- see volume.go), which is where every
// MFT record, including extension records not already bootstrapped through
// loadExtensionEntry, actually lives.
func NewMftEntryVector(source VolumeSource, volume *VolumeHeader, stream *ClusterRunReader, cache *MftEntryCache) *MftEntryVector {
	if cache == nil {
		cache = NewMftEntryCache(DefaultMftEntryCacheCapacity)
	}

	return &MftEntryVector{
		source: source,
		volume: volume,
		stream: stream,
		cache:  cache,
	}
}

// EntryByIndex returns the MftEntry at the given MFT index, parsing and
// caching it on a miss.
func (mev *MftEntryVector) EntryByIndex(index uint64) (entry *MftEntry, err error) {
	defer func() {
		if errRaw := recover(); errRaw != nil {
			var ok bool
			if err, ok = errRaw.(error); ok == true {
				err = log.Wrap(err)
			} else {
				err = log.Errorf("Error not an error: [%s] [%v]", reflect.TypeOf(errRaw).Name(), errRaw)
			}
		}
	}()

	if cached, found := mev.cache.Get(index); found == true {
		return cached, nil
	}

	entrySize := int64(mev.volume.MftEntrySize())
	raw := make([]byte, entrySize)

	n, readErr := mev.stream.ReadAt(raw, int64(index)*entrySize)
	if n != len(raw) {
		log.Panicf("short read of mft entry (%d) from $MFT stream: got (%d), wanted (%d)", index, n, len(raw))
	} else if readErr != nil {
		log.PanicIf(readErr)
	}

	entry, err = ParseMftEntry(mev.source, mev.volume, raw, index, false)
	log.PanicIf(err)

	mev.cache.Put(index, entry)

	return entry, nil
}

// EntryByFileReference resolves a FileReference to its MftEntry and
// validates that the entry's current sequence number matches the
// reference's, returning ErrStaleFileReference when it does not (the slot
// has been reused since the reference was captured).
func (mev *MftEntryVector) EntryByFileReference(ref FileReference) (entry *MftEntry, err error) {
	entry, err = mev.EntryByIndex(ref.EntryIndex())
	if err != nil {
		return nil, err
	}

	if entry.Header != nil && entry.Header.Sequence != ref.Sequence() {
		return entry, ErrStaleFileReference
	}

	return entry, nil
}
