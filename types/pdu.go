package types

import "gopkg.in/yaml.v3"

// PduType distinguishes file directive PDUs from file data PDUs (byte 0, bit 4)
type PduType uint8

const (
	FileDirective PduType = 0
	FileData      PduType = 1
)

var pduTypeNames = map[PduType]string{
	FileDirective: "file-directive",
	FileData:      "file-data",
}

func (t PduType) String() string { return flagName(t, pduTypeNames) }

func (t PduType) MarshalYAML() (interface{}, error) { return t.String(), nil }

func (t *PduType) UnmarshalYAML(node *yaml.Node) error {
	return unmarshalFlag(node, "pdu_type", t, pduTypeNames)
}

// Direction tells which side of a transaction the PDU travels towards (byte 0, bit 3)
type Direction uint8

const (
	ToReceiver Direction = 0
	ToSender   Direction = 1
)

var directionNames = map[Direction]string{
	ToReceiver: "to-receiver",
	ToSender:   "to-sender",
}

func (d Direction) String() string { return flagName(d, directionNames) }

func (d Direction) MarshalYAML() (interface{}, error) { return d.String(), nil }

func (d *Direction) UnmarshalYAML(node *yaml.Node) error {
	return unmarshalFlag(node, "direction", d, directionNames)
}

// TransmissionMode selects acknowledged or unacknowledged delivery (byte 0, bit 2)
type TransmissionMode uint8

const (
	Acknowledged   TransmissionMode = 0
	Unacknowledged TransmissionMode = 1
)

var transmissionModeNames = map[TransmissionMode]string{
	Acknowledged:   "acknowledged",
	Unacknowledged: "unacknowledged",
}

func (m TransmissionMode) String() string { return flagName(m, transmissionModeNames) }

func (m TransmissionMode) MarshalYAML() (interface{}, error) { return m.String(), nil }

func (m *TransmissionMode) UnmarshalYAML(node *yaml.Node) error {
	return unmarshalFlag(node, "transmission_mode", m, transmissionModeNames)
}

// CrcFlag indicates whether a checksum trailer follows the data field (byte 0, bit 1)
type CrcFlag uint8

const (
	CrcNotPresent CrcFlag = 0
	CrcPresent    CrcFlag = 1
)

var crcFlagNames = map[CrcFlag]string{
	CrcNotPresent: "not-present",
	CrcPresent:    "present",
}

func (c CrcFlag) String() string { return flagName(c, crcFlagNames) }

func (c CrcFlag) MarshalYAML() (interface{}, error) { return c.String(), nil }

func (c *CrcFlag) UnmarshalYAML(node *yaml.Node) error {
	return unmarshalFlag(node, "crc_flag", c, crcFlagNames)
}

// LargeFileFlag selects 32-bit or 64-bit file size and offset fields in the body (byte 0, bit 0)
type LargeFileFlag uint8

const (
	SmallFile LargeFileFlag = 0
	LargeFile LargeFileFlag = 1
)

var largeFileFlagNames = map[LargeFileFlag]string{
	SmallFile: "small-file",
	LargeFile: "large-file",
}

func (f LargeFileFlag) String() string { return flagName(f, largeFileFlagNames) }

func (f LargeFileFlag) MarshalYAML() (interface{}, error) { return f.String(), nil }

func (f *LargeFileFlag) UnmarshalYAML(node *yaml.Node) error {
	return unmarshalFlag(node, "large_file_flag", f, largeFileFlagNames)
}

// SegmentationControl tells whether record boundaries are preserved (byte 3, bit 7)
type SegmentationControl uint8

const (
	BoundariesNotPreserved SegmentationControl = 0
	BoundariesPreserved    SegmentationControl = 1
)

var segmentationControlNames = map[SegmentationControl]string{
	BoundariesNotPreserved: "not-preserved",
	BoundariesPreserved:    "preserved",
}

func (s SegmentationControl) String() string { return flagName(s, segmentationControlNames) }

func (s SegmentationControl) MarshalYAML() (interface{}, error) { return s.String(), nil }

func (s *SegmentationControl) UnmarshalYAML(node *yaml.Node) error {
	return unmarshalFlag(node, "segmentation_control", s, segmentationControlNames)
}

// SegmentMetadataFlag tells whether file data PDUs carry segment metadata (byte 3, bit 3)
type SegmentMetadataFlag uint8

const (
	SegmentMetadataNotPresent SegmentMetadataFlag = 0
	SegmentMetadataPresent    SegmentMetadataFlag = 1
)

var segmentMetadataFlagNames = map[SegmentMetadataFlag]string{
	SegmentMetadataNotPresent: "not-present",
	SegmentMetadataPresent:    "present",
}

func (s SegmentMetadataFlag) String() string { return flagName(s, segmentMetadataFlagNames) }

func (s SegmentMetadataFlag) MarshalYAML() (interface{}, error) { return s.String(), nil }

func (s *SegmentMetadataFlag) UnmarshalYAML(node *yaml.Node) error {
	return unmarshalFlag(node, "segment_metadata_flag", s, segmentMetadataFlagNames)
}
