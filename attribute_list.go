package ntfs

import (
	"reflect"

	"github.com/dsoprea/go-logging"
)

// attributeListEntryHeaderSize is the fixed portion of one AttributeListEntry,
// before its optional UTF-16LE name.
const attributeListEntryHeaderSize = 26

// AttributeListEntry is one entry of a decoded $ATTRIBUTE_LIST: a pointer to
// where one piece of a (possibly split) attribute actually lives.
type AttributeListEntry struct {
	Type          AttributeType
	Name          string
	DataFirstVcn  uint64
	FileReference FileReference
	Identifier    uint16
}

// AttributeList is the parsed $ATTRIBUTE_LIST attribute: the set of entries
// describing which MFT records (base and extensions) hold which attributes.
type AttributeList struct {
	Entries []*AttributeListEntry
}

// ExtensionFileReferences returns the de-duplicated set of file references
// this list names, excluding selfReference (the base record itself, which
// the list may legally also enumerate).
func (al *AttributeList) ExtensionFileReferences(selfReference FileReference) []FileReference {
	seen := make(map[uint64]bool)
	refs := make([]FileReference, 0)

	for _, entry := range al.Entries {
		if entry.FileReference.EntryIndex() == selfReference.EntryIndex() {
			continue
		}

		if seen[entry.FileReference.EntryIndex()] == true {
			continue
		}

		seen[entry.FileReference.EntryIndex()] = true
		refs = append(refs, entry.FileReference)
	}

	return refs
}

// ParseAttributeList decodes a $ATTRIBUTE_LIST attribute's value (the
// resident bytes, or the fully-assembled non-resident stream) into an
// AttributeList.
func ParseAttributeList(buf []byte) (al *AttributeList, err error) {
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

	entries := make([]*AttributeListEntry, 0)

	for len(buf) > 0 {
		if len(buf) < attributeListEntryHeaderSize {
			log.Panicf(
				"attribute-list entry truncated: (%d) bytes remain, need at least (%d)",
				len(buf), attributeListEntryHeaderSize)
		}

		r := newBinReader(buf)

		size := int(r.Uint16(4))
		if size < attributeListEntryHeaderSize {
			log.Panicf("attribute-list entry size (%d) smaller than header size (%d)", size, attributeListEntryHeaderSize)
		}

		if size > len(buf) {
			log.Panicf("attribute-list entry size (%d) exceeds remaining data (%d)", size, len(buf))
		}

		nameSize := int(r.Byte(6))
		nameOffset := int(r.Byte(7))

		name := ""
		if nameSize > 0 {
			if nameOffset < attributeListEntryHeaderSize {
				log.Panicf("attribute-list entry name offset (%d) precedes header (%d)", nameOffset, attributeListEntryHeaderSize)
			}

			if nameOffset+nameSize*2 > size {
				log.Panicf(
					"attribute-list entry name (offset=(%d) size=(%d) code units) exceeds entry bounds (%d)",
					nameOffset, nameSize, size)
			}

			name = decodeUtf16String(r.Read(nameOffset, nameSize*2))
		}

		entry := &AttributeListEntry{
			Type:          AttributeType(r.Uint32(0)),
			Name:          name,
			DataFirstVcn:  r.Uint64(8),
			FileReference: FileReference(r.Uint64(16)),
			Identifier:    r.Uint16(24),
		}

		entries = append(entries, entry)

		buf = r.ReadFrom(size)
	}

	return &AttributeList{Entries: entries}, nil
}
