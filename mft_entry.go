package ntfs

import (
	"reflect"

	"github.com/dsoprea/go-logging"
)

// mftFlagMftOnly is the bit value of the "MFT only" parse option (do not
// resolve extension records); ParseMftEntry takes it as its mftOnly bool.
const (
	mftFlagMftOnly = 1 << 0
)

// alternateDataAttribute is one named $DATA stream: its chain head and the
// name used to look it up.
type alternateDataAttribute struct {
	name string
	head *MftAttribute
}

// MftEntry is the decoded aggregate of one MFT record: its header, every
// attribute it carries (including those folded in from extension records
// via $ATTRIBUTE_LIST), and the classification indices the rest of this
// package uses to answer "give me attribute X" without a linear scan.
type MftEntry struct {
	source VolumeSource
	volume *VolumeHeader

	raw    []byte
	Header *MftEntryHeader

	Index         uint64
	FileReference FileReference

	IsEmpty        bool
	IsCorrupted    bool
	AttributesRead bool
	HasI30Index    bool

	attributes []*MftAttribute

	standardInformationIndex int
	volumeNameIndex          int
	volumeInformationIndex   int
	reparsePointIndex        int
	securityDescriptorIndex  int
	firstFileNameIndex       int

	dataAttributeHead          *MftAttribute
	wofCompressedDataAttribute *MftAttribute

	alternateDataAttributes []*alternateDataAttribute

	listAttribute  *MftAttribute
	attributeList  *AttributeList
}

// ParseMftEntry decodes one MFT record from raw (whose length must equal
// volume.MftEntrySize()). callerIndex is the MFT index the caller expects
// this record to occupy; it wins over the header's own recorded index when
// the two disagree (a record can be relocated, e.g. during $MFT bootstrap).
// When mftOnly is true, $ATTRIBUTE_LIST extension records are
// not resolved -- used while parsing the $MFT's own record 0, before a
// vector of other entries even exists to resolve against.
func ParseMftEntry(source VolumeSource, volume *VolumeHeader, raw []byte, callerIndex uint64, mftOnly bool) (entry *MftEntry, err error) {
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

	entry = &MftEntry{
		source:                    source,
		volume:                    volume,
		raw:                       raw,
		standardInformationIndex:  -1,
		volumeNameIndex:           -1,
		volumeInformationIndex:    -1,
		reparsePointIndex:         -1,
		securityDescriptorIndex:   -1,
		firstFileNameIndex:        -1,
	}

	if isOnlyOneValue(raw) == true {
		entry.IsEmpty = true
		entry.Index = callerIndex
		entry.FileReference = NewFileReference(callerIndex, 0)

		return entry, nil
	}

	header, isBad, err := ReadMftEntryHeader(raw)
	log.PanicIf(err)

	if isBad == true || header == nil {
		entry.IsEmpty = true
		entry.IsCorrupted = isBad
		entry.Index = callerIndex
		entry.FileReference = NewFileReference(callerIndex, 0)

		return entry, nil
	}

	entry.Header = header

	if uint64(header.TotalEntrySize) != uint64(len(raw)) {
		entry.IsCorrupted = true
	}

	if int(header.AttributesOffset) >= len(raw) {
		log.Panicf("attributes offset (%d) is outside of record (len=%d)", header.AttributesOffset, len(raw))
	}

	if header.FixupValuesOffset > header.AttributesOffset {
		log.Panicf(
			"fix-up values offset (%d) follows attributes offset (%d)",
			header.FixupValuesOffset, header.AttributesOffset)
	}

	if header.NumberOfFixupValues > 0 {
		fa := NewFixupApplier()

		placeholderMismatch, fixupErr := fa.Apply(raw, int(header.FixupValuesOffset), int(header.NumberOfFixupValues))
		log.PanicIf(fixupErr)

		if placeholderMismatch == true {
			entry.IsCorrupted = true
		}
	}

	entry.Index = header.Index
	if entry.Index != callerIndex {
		entry.Index = callerIndex
	}

	entry.FileReference = NewFileReference(entry.Index, header.Sequence)

	attributesEnd := len(raw)
	if int(header.UsedEntrySize) <= len(raw) && header.UsedEntrySize > 0 {
		attributesEnd = int(header.UsedEntrySize)
	}

	attrs, err := ParseMftAttributes(raw[header.AttributesOffset:attributesEnd])
	log.PanicIf(err)

	for _, attr := range attrs {
		err = entry.appendAttribute(attr)
		log.PanicIf(err)
	}

	if entry.listAttribute != nil && mftOnly != true {
		err = entry.resolveExtensionRecords()
		log.PanicIf(err)
	}

	entry.AttributesRead = true

	return entry, nil
}

// appendAttribute records attr in the entry's flat attribute list and
// updates the classification indices/chains per this package's
// at-most-one, first-wins, and by-name chaining rules.
func (me *MftEntry) appendAttribute(attr *MftAttribute) (err error) {
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

	me.attributes = append(me.attributes, attr)
	newIndex := len(me.attributes) - 1

	switch attr.Type {
	case AttributeTypeStandardInformation:
		if me.standardInformationIndex != -1 {
			log.Panicf("record already has a $STANDARD_INFORMATION attribute")
		}

		me.standardInformationIndex = newIndex

	case AttributeTypeVolumeName:
		if me.volumeNameIndex != -1 {
			log.Panicf("record already has a $VOLUME_NAME attribute")
		}

		me.volumeNameIndex = newIndex

	case AttributeTypeVolumeInformation:
		if me.volumeInformationIndex != -1 {
			log.Panicf("record already has a $VOLUME_INFORMATION attribute")
		}

		me.volumeInformationIndex = newIndex

	case AttributeTypeReparsePoint:
		if me.reparsePointIndex != -1 {
			log.Panicf("record already has a $REPARSE_POINT attribute")
		}

		me.reparsePointIndex = newIndex

	case AttributeTypeSecurityDescriptor:
		if me.securityDescriptorIndex != -1 {
			log.Panicf("record already has a $SECURITY_DESCRIPTOR attribute")
		}

		me.securityDescriptorIndex = newIndex

	case AttributeTypeFileName:
		if me.firstFileNameIndex == -1 {
			me.firstFileNameIndex = newIndex
		}

	case AttributeTypeIndexRoot:
		if equalNameAscii(attr.Name, "$I30") == true {
			me.HasI30Index = true
		}

	case AttributeTypeAttributeList:
		me.listAttribute = attr

	case AttributeTypeData:
		if attr.Name == "" {
			me.dataAttributeHead = appendToChain(me.dataAttributeHead, attr)
		} else {
			me.appendAlternateDataAttribute(attr)
		}
	}

	return nil
}

// appendAlternateDataAttribute chains attr onto the named alternate-data
// stream it belongs to, registering a new stream on first sight of its
// name.
func (me *MftEntry) appendAlternateDataAttribute(attr *MftAttribute) {
	for _, ada := range me.alternateDataAttributes {
		if equalNameAscii(ada.name, attr.Name) == true {
			ada.head = appendToChain(ada.head, attr)

			if equalNameAscii(attr.Name, "WofCompressedData") == true {
				me.wofCompressedDataAttribute = ada.head
			}

			return
		}
	}

	ada := &alternateDataAttribute{name: attr.Name, head: attr}
	me.alternateDataAttributes = append(me.alternateDataAttributes, ada)

	if equalNameAscii(attr.Name, "WofCompressedData") == true {
		me.wofCompressedDataAttribute = attr
	}
}

// appendToChain links new onto the end of the chain starting at head,
// requiring strictly ascending VCN ranges (equality tolerated for
// resident-only types, whose VCNs are always zero).
func appendToChain(head *MftAttribute, next *MftAttribute) *MftAttribute {
	if head == nil {
		return next
	}

	tail := head
	for tail.Next != nil {
		tail = tail.Next
	}

	if next.NonResident == true && tail.NonResident == true && next.DataFirstVcn <= tail.DataLastVcn {
		log.Panicf(
			"chained attribute VCN (%d) does not follow previous chain tail's last VCN (%d)",
			next.DataFirstVcn, tail.DataLastVcn)
	}

	tail.Next = next

	return head
}

// resolveExtensionRecords follows this record's $ATTRIBUTE_LIST to gather
// attributes from extension records, cloning each contributed attribute
// into this (the base) record so it can outlive the extension entry in the
// MFT-entry cache.
func (me *MftEntry) resolveExtensionRecords() (err error) {
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

	listBytes, err := me.listAttributeBytes()
	log.PanicIf(err)

	attributeList, err := ParseAttributeList(listBytes)
	log.PanicIf(err)

	me.attributeList = attributeList

	extensionRefs := attributeList.ExtensionFileReferences(me.FileReference)

	localCache := make(map[uint64]*MftEntry)

	for _, ref := range extensionRefs {
		extEntry, loadErr := me.loadExtensionEntry(ref, localCache)
		if loadErr != nil {
			me.IsCorrupted = true
			continue
		}

		if extEntry.Header == nil || extEntry.Header.IsInUse() != true {
			me.IsCorrupted = true
			continue
		}

		if extEntry.Header.BaseRecordFileReference.EntryIndex() != me.FileReference.EntryIndex() {
			me.IsCorrupted = true
			continue
		}

		for _, attr := range extEntry.attributes {
			cloned := cloneMftAttribute(attr)

			appendErr := me.appendAttribute(cloned)
			if appendErr != nil {
				me.IsCorrupted = true
			}
		}
	}

	return nil
}

// loadExtensionEntry reads and parses one extension MFT record directly
// (bypassing the package-level MftEntryCache), caching it in the caller's
// per-walk map (one slot per extension index, unbounded) so repeated
// references within one walk don't re-read the volume.
func (me *MftEntry) loadExtensionEntry(ref FileReference, localCache map[uint64]*MftEntry) (extEntry *MftEntry, err error) {
	if cached, found := localCache[ref.EntryIndex()]; found == true {
		return cached, nil
	}

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

	raw := make([]byte, me.volume.MftEntrySize())

	offset := int64(me.volume.MftOffset()) + int64(ref.EntryIndex())*int64(me.volume.MftEntrySize())

	n, readErr := me.source.ReadAt(raw, offset)
	log.PanicIf(readErr)

	if n != len(raw) {
		log.Panicf("short read of extension mft entry (%d): got (%d) bytes, wanted (%d)", ref.EntryIndex(), n, len(raw))
	}

	extEntry, err = ParseMftEntry(me.source, me.volume, raw, ref.EntryIndex(), true)
	log.PanicIf(err)

	localCache[ref.EntryIndex()] = extEntry

	return extEntry, nil
}

// listAttributeBytes returns the fully materialized content of this
// record's $ATTRIBUTE_LIST attribute, reading through the cluster-run
// stream when it is non-resident.
func (me *MftEntry) listAttributeBytes() (data []byte, err error) {
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

	attr := me.listAttribute

	if attr.NonResident != true {
		return attr.ResidentData, nil
	}

	crr := NewClusterRunReader(me.source, me.volume.ClusterSize(), attr.DataRuns)

	data = make([]byte, attr.DataSize)

	n, readErr := crr.ReadAt(data, 0)
	if readErr != nil && int64(n) < int64(attr.DataSize) {
		log.PanicIf(readErr)
	}

	return data, nil
}

// cloneMftAttribute makes a deep-enough copy of attr (including its resident
// payload and data runs, but not its chain) for cross-record ownership.
func cloneMftAttribute(attr *MftAttribute) *MftAttribute {
	clone := *attr
	clone.Next = nil

	if attr.ResidentData != nil {
		clone.ResidentData = duplicate(attr.ResidentData)
	}

	if attr.DataRuns != nil {
		clone.DataRuns = make([]DataRun, len(attr.DataRuns))
		copy(clone.DataRuns, attr.DataRuns)
	}

	return &clone
}

// IsAllocated reports whether the header's in-use flag is set. An empty or
// unreadable record is never allocated.
func (me *MftEntry) IsAllocated() bool {
	if me.IsEmpty || me.Header == nil {
		return false
	}

	return me.Header.IsInUse()
}

// HasDirectoryEntriesIndex reports whether this record carries a $I30
// directory index, i.e. whether it represents a directory.
func (me *MftEntry) HasDirectoryEntriesIndex() bool {
	return me.HasI30Index
}

// NumberOfAttributes returns the number of attributes folded into this
// record (including those cloned in from extension records).
func (me *MftEntry) NumberOfAttributes() int {
	return len(me.attributes)
}

// AttributeByIndex returns the attribute at position i.
func (me *MftEntry) AttributeByIndex(i int) (*MftAttribute, error) {
	if i < 0 || i >= len(me.attributes) {
		return nil, wrapKind(KindInvalidArgument, ErrNotPresent)
	}

	return me.attributes[i], nil
}

// StandardInformationAttribute returns the record's $STANDARD_INFORMATION
// attribute, or ErrNotPresent if it has none.
func (me *MftEntry) StandardInformationAttribute() (*MftAttribute, error) {
	return me.attributeByClassifiedIndex(me.standardInformationIndex)
}

// VolumeNameAttribute returns the record's $VOLUME_NAME attribute, or
// ErrNotPresent if it has none.
func (me *MftEntry) VolumeNameAttribute() (*MftAttribute, error) {
	return me.attributeByClassifiedIndex(me.volumeNameIndex)
}

// VolumeInformationAttribute returns the record's $VOLUME_INFORMATION
// attribute, or ErrNotPresent if it has none.
func (me *MftEntry) VolumeInformationAttribute() (*MftAttribute, error) {
	return me.attributeByClassifiedIndex(me.volumeInformationIndex)
}

// ReparsePointAttribute returns the record's $REPARSE_POINT attribute, or
// ErrNotPresent if it has none.
func (me *MftEntry) ReparsePointAttribute() (*MftAttribute, error) {
	return me.attributeByClassifiedIndex(me.reparsePointIndex)
}

// SecurityDescriptorAttribute returns the record's $SECURITY_DESCRIPTOR
// attribute, or ErrNotPresent if it has none.
func (me *MftEntry) SecurityDescriptorAttribute() (*MftAttribute, error) {
	return me.attributeByClassifiedIndex(me.securityDescriptorIndex)
}

// FirstFileNameAttribute returns the first $FILE_NAME attribute this record
// carries, or ErrNotPresent if it has none. A file may have several (short
// name, long name, hard links); callers that need all of them should scan
// NumberOfAttributes()/AttributeByIndex().
func (me *MftEntry) FirstFileNameAttribute() (*MftAttribute, error) {
	return me.attributeByClassifiedIndex(me.firstFileNameIndex)
}

// DataAttribute returns the chain head of the unnamed $DATA attribute, or
// ErrNotPresent if this record has none.
func (me *MftEntry) DataAttribute() (*MftAttribute, error) {
	if me.dataAttributeHead == nil {
		return nil, ErrNotPresent
	}

	return me.dataAttributeHead, nil
}

// WofCompressedDataAttribute returns the "WofCompressedData" alternate data
// stream, if present.
func (me *MftEntry) WofCompressedDataAttribute() (*MftAttribute, error) {
	if me.wofCompressedDataAttribute == nil {
		return nil, ErrNotPresent
	}

	return me.wofCompressedDataAttribute, nil
}

// NumberOfAlternateDataAttributes returns the number of distinct named
// $DATA streams this record carries.
func (me *MftEntry) NumberOfAlternateDataAttributes() int {
	return len(me.alternateDataAttributes)
}

// AlternateDataAttributeByIndex returns the chain head of the i-th named
// $DATA stream.
func (me *MftEntry) AlternateDataAttributeByIndex(i int) (*MftAttribute, error) {
	if i < 0 || i >= len(me.alternateDataAttributes) {
		return nil, wrapKind(KindInvalidArgument, ErrNotPresent)
	}

	return me.alternateDataAttributes[i].head, nil
}

// AlternateDataAttributeByName looks up a named $DATA stream using NTFS's
// case-insensitive collation.
func (me *MftEntry) AlternateDataAttributeByName(name string) (*MftAttribute, error) {
	for _, ada := range me.alternateDataAttributes {
		if equalNameAscii(ada.name, name) == true {
			return ada.head, nil
		}
	}

	return nil, ErrNotPresent
}

func (me *MftEntry) attributeByClassifiedIndex(index int) (*MftAttribute, error) {
	if index == -1 {
		return nil, ErrNotPresent
	}

	return me.attributes[index], nil
}
