// Package types defines the SMB2 wire codec: constants, the synchronous header,
// request and response bodies, negotiate contexts and transport framing.
package types

import "fmt"

// Dialect versions for SMB2/SMB3 negotiation
type Dialect uint16

const (
	DialectSMB2_0_2 Dialect = 0x0202 // SMB 2.0.2
	DialectSMB2_1   Dialect = 0x0210 // SMB 2.1
	DialectSMB3_0   Dialect = 0x0300 // SMB 3.0
	DialectSMB3_0_2 Dialect = 0x0302 // SMB 3.0.2
	DialectSMB3_1_1 Dialect = 0x0311 // SMB 3.1.1
)

// Dialects lists every dialect a negotiate request may offer
var Dialects = []Dialect{
	DialectSMB2_0_2,
	DialectSMB2_1,
	DialectSMB3_0,
	DialectSMB3_0_2,
	DialectSMB3_1_1,
}

// ParseDialect maps a wire code to a Dialect
func ParseDialect(code uint16) (Dialect, error) {
	return parseEnum("dialect", Dialect(code), Dialects)
}

func (d Dialect) String() string {
	return fmt.Sprintf("%d.%d.%d", d>>8, (d>>4)&0xF, d&0xF)
}

// Command values for SMB2 header
type Command uint16

const (
	CommandNegotiate      Command = 0x0000
	CommandSessionSetup   Command = 0x0001
	CommandLogoff         Command = 0x0002
	CommandTreeConnect    Command = 0x0003
	CommandTreeDisconnect Command = 0x0004
	CommandCreate         Command = 0x0005
	CommandClose          Command = 0x0006
	CommandFlush          Command = 0x0007
	CommandRead           Command = 0x0008
	CommandWrite          Command = 0x0009
	CommandLock           Command = 0x000A
	CommandIoctl          Command = 0x000B
	CommandCancel         Command = 0x000C
	CommandEcho           Command = 0x000D
	CommandQueryDirectory Command = 0x000E
	CommandChangeNotify   Command = 0x000F
	CommandQueryInfo      Command = 0x0010
	CommandSetInfo        Command = 0x0011
	CommandOplockBreak    Command = 0x0012
)

var commandNames = map[Command]string{
	CommandNegotiate:      "NEGOTIATE",
	CommandSessionSetup:   "SESSION_SETUP",
	CommandLogoff:         "LOGOFF",
	CommandTreeConnect:    "TREE_CONNECT",
	CommandTreeDisconnect: "TREE_DISCONNECT",
	CommandCreate:         "CREATE",
	CommandClose:          "CLOSE",
	CommandFlush:          "FLUSH",
	CommandRead:           "READ",
	CommandWrite:          "WRITE",
	CommandLock:           "LOCK",
	CommandIoctl:          "IOCTL",
	CommandCancel:         "CANCEL",
	CommandEcho:           "ECHO",
	CommandQueryDirectory: "QUERY_DIRECTORY",
	CommandChangeNotify:   "CHANGE_NOTIFY",
	CommandQueryInfo:      "QUERY_INFO",
	CommandSetInfo:        "SET_INFO",
	CommandOplockBreak:    "OPLOCK_BREAK",
}

// ParseCommand maps a wire code to one of the 19 commands
func ParseCommand(code uint16) (Command, error) {
	c := Command(code)
	if _, ok := commandNames[c]; !ok {
		return 0, &DecodeError{Field: "command", Code: uint64(code)}
	}
	return c, nil
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("COMMAND(0x%04X)", uint16(c))
}

// HeaderFlags for SMB2 header
type HeaderFlags uint32

const (
	FlagsServerToRedir   HeaderFlags = 0x00000001 // Response from server
	FlagsAsyncCommand    HeaderFlags = 0x00000002
	FlagsRelatedOps      HeaderFlags = 0x00000004 // Compounded
	FlagsSigned          HeaderFlags = 0x00000008
	FlagsPriorityMask    HeaderFlags = 0x00000070 // SMB 3.1.1
	FlagsDFSOperations   HeaderFlags = 0x10000000
	FlagsReplayOperation HeaderFlags = 0x20000000 // SMB 3.0
)

// NTStatus codes commonly returned to a fuzzing client
type NTStatus uint32

const (
	StatusSuccess               NTStatus = 0x00000000
	StatusPending               NTStatus = 0x00000103
	StatusMoreProcessingReq     NTStatus = 0xC0000016
	StatusInvalidParameter      NTStatus = 0xC000000D
	StatusNoSuchFile            NTStatus = 0xC000000F
	StatusEndOfFile             NTStatus = 0xC0000011
	StatusMoreEntries           NTStatus = 0x00000105
	StatusAccessDenied          NTStatus = 0xC0000022
	StatusObjectNameNotFound    NTStatus = 0xC0000034
	StatusObjectNameCollision   NTStatus = 0xC0000035
	StatusObjectPathNotFound    NTStatus = 0xC000003A
	StatusLogonFailure          NTStatus = 0xC000006D
	StatusAccountDisabled       NTStatus = 0xC0000072
	StatusPasswordExpired       NTStatus = 0xC0000071
	StatusBadNetworkName        NTStatus = 0xC00000CC
	StatusNotSupported          NTStatus = 0xC00000BB
	StatusNetworkSessionExpired NTStatus = 0xC000035C
	StatusInvalidDeviceRequest  NTStatus = 0xC0000010
	StatusUserSessionDeleted    NTStatus = 0xC0000203
	StatusRequestNotAccepted    NTStatus = 0xC00000D0
	StatusNoMoreFiles           NTStatus = 0x80000006
	StatusBufferOverflow        NTStatus = 0x80000005
)

// IsError returns true if the status has error severity
func (s NTStatus) IsError() bool {
	return s&0xC0000000 == 0xC0000000
}

// AccessMask for file access rights
type AccessMask uint32

const (
	FileReadData        AccessMask = 0x00000001
	FileWriteData       AccessMask = 0x00000002
	FileAppendData      AccessMask = 0x00000004
	FileReadEA          AccessMask = 0x00000008
	FileWriteEA         AccessMask = 0x00000010
	FileExecute         AccessMask = 0x00000020
	FileDeleteChild     AccessMask = 0x00000040
	FileReadAttributes  AccessMask = 0x00000080
	FileWriteAttributes AccessMask = 0x00000100
	Delete              AccessMask = 0x00010000
	ReadControl         AccessMask = 0x00020000
	WriteDAC            AccessMask = 0x00040000
	WriteOwner          AccessMask = 0x00080000
	Synchronize         AccessMask = 0x00100000
	AccessSystemSec     AccessMask = 0x01000000
	MaximumAllowed      AccessMask = 0x02000000
	GenericAll          AccessMask = 0x10000000
	GenericExecute      AccessMask = 0x20000000
	GenericWrite        AccessMask = 0x40000000
	GenericRead         AccessMask = 0x80000000
)

// AccessMasks lists every defined access bit
var AccessMasks = []AccessMask{
	FileReadData, FileWriteData, FileAppendData, FileReadEA, FileWriteEA,
	FileExecute, FileDeleteChild, FileReadAttributes, FileWriteAttributes,
	Delete, ReadControl, WriteDAC, WriteOwner, Synchronize, AccessSystemSec,
	MaximumAllowed, GenericAll, GenericExecute, GenericWrite, GenericRead,
}

// CreateDisposition for create operations
type CreateDisposition uint32

const (
	FileSupersede   CreateDisposition = 0 // Replace if exists, create if not
	FileOpen        CreateDisposition = 1 // Open existing, fail if not exists
	FileCreate      CreateDisposition = 2 // Create new, fail if exists
	FileOpenIf      CreateDisposition = 3 // Open if exists, create if not
	FileOverwrite   CreateDisposition = 4 // Overwrite existing, fail if not
	FileOverwriteIf CreateDisposition = 5 // Overwrite if exists, create if not
)

// CreateDispositions lists every disposition
var CreateDispositions = []CreateDisposition{
	FileSupersede, FileOpen, FileCreate, FileOpenIf, FileOverwrite, FileOverwriteIf,
}

// ParseCreateDisposition maps a wire code to a CreateDisposition
func ParseCreateDisposition(code uint32) (CreateDisposition, error) {
	return parseEnum("create disposition", CreateDisposition(code), CreateDispositions)
}

// CreateOptions for create operations
type CreateOptions uint32

const (
	FileDirectoryFile           CreateOptions = 0x00000001
	FileWriteThrough            CreateOptions = 0x00000002
	FileSequentialOnly          CreateOptions = 0x00000004
	FileNoIntermediateBuffering CreateOptions = 0x00000008
	FileSynchronousIOAlert      CreateOptions = 0x00000010
	FileSynchronousIONonAlert   CreateOptions = 0x00000020
	FileNonDirectoryFile        CreateOptions = 0x00000040
	FileCompleteIfOplocked      CreateOptions = 0x00000100
	FileNoEAKnowledge           CreateOptions = 0x00000200
	FileOpenRemoteInstance      CreateOptions = 0x00000400
	FileRandomAccess            CreateOptions = 0x00000800
	FileDeleteOnClose           CreateOptions = 0x00001000
	FileOpenByFileID            CreateOptions = 0x00002000
	FileOpenForBackupIntent     CreateOptions = 0x00004000
	FileNoCompression           CreateOptions = 0x00008000
	FileOpenRequiringOplock     CreateOptions = 0x00010000
	FileDisallowExclusive       CreateOptions = 0x00020000
	FileReserveOpfilter         CreateOptions = 0x00100000
	FileOpenReparsePoint        CreateOptions = 0x00200000
	FileOpenNoRecall            CreateOptions = 0x00400000
	FileOpenForFreeSpaceQuery   CreateOptions = 0x00800000
)

// CreateOptionValues lists every create option bit
var CreateOptionValues = []CreateOptions{
	FileDirectoryFile, FileWriteThrough, FileSequentialOnly, FileNoIntermediateBuffering,
	FileSynchronousIOAlert, FileSynchronousIONonAlert, FileNonDirectoryFile,
	FileCompleteIfOplocked, FileNoEAKnowledge, FileOpenRemoteInstance, FileRandomAccess,
	FileDeleteOnClose, FileOpenByFileID, FileOpenForBackupIntent, FileNoCompression,
	FileOpenRequiringOplock, FileDisallowExclusive, FileReserveOpfilter,
	FileOpenReparsePoint, FileOpenNoRecall, FileOpenForFreeSpaceQuery,
}

// FileAttributes for files and directories
type FileAttributes uint32

const (
	FileAttributeReadOnly           FileAttributes = 0x00000001
	FileAttributeHidden             FileAttributes = 0x00000002
	FileAttributeSystem             FileAttributes = 0x00000004
	FileAttributeDirectory          FileAttributes = 0x00000010
	FileAttributeArchive            FileAttributes = 0x00000020
	FileAttributeNormal             FileAttributes = 0x00000080
	FileAttributeTemporary          FileAttributes = 0x00000100
	FileAttributeSparseFile         FileAttributes = 0x00000200
	FileAttributeReparsePoint       FileAttributes = 0x00000400
	FileAttributeCompressed         FileAttributes = 0x00000800
	FileAttributeOffline            FileAttributes = 0x00001000
	FileAttributeNotContentIndexed  FileAttributes = 0x00002000
	FileAttributeEncrypted          FileAttributes = 0x00004000
	FileAttributeIntegrityStream    FileAttributes = 0x00008000
	FileAttributeNoScrubData        FileAttributes = 0x00020000
	FileAttributeRecallOnOpen       FileAttributes = 0x00040000
	FileAttributePinned             FileAttributes = 0x00080000
	FileAttributeUnpinned           FileAttributes = 0x00100000
	FileAttributeRecallOnDataAccess FileAttributes = 0x00400000
)

// FileAttributeValues lists every attribute bit
var FileAttributeValues = []FileAttributes{
	FileAttributeReadOnly, FileAttributeHidden, FileAttributeSystem, FileAttributeDirectory,
	FileAttributeArchive, FileAttributeNormal, FileAttributeTemporary, FileAttributeSparseFile,
	FileAttributeReparsePoint, FileAttributeCompressed, FileAttributeOffline,
	FileAttributeNotContentIndexed, FileAttributeEncrypted, FileAttributeIntegrityStream,
	FileAttributeNoScrubData, FileAttributeRecallOnOpen, FileAttributePinned,
	FileAttributeUnpinned, FileAttributeRecallOnDataAccess,
}

// ShareAccess for file sharing
type ShareAccess uint32

const (
	FileShareRead   ShareAccess = 0x00000001
	FileShareWrite  ShareAccess = 0x00000002
	FileShareDelete ShareAccess = 0x00000004
)

// ShareAccessValues lists every share access bit
var ShareAccessValues = []ShareAccess{FileShareRead, FileShareWrite, FileShareDelete}

// ShareType indicates the type of share
type ShareType uint8

const (
	ShareTypeDisk  ShareType = 0x01
	ShareTypePipe  ShareType = 0x02
	ShareTypePrint ShareType = 0x03
)

// ParseShareType maps a wire code to a ShareType
func ParseShareType(code uint8) (ShareType, error) {
	return parseEnum("share type", ShareType(code), []ShareType{ShareTypeDisk, ShareTypePipe, ShareTypePrint})
}

// SecurityMode flags. Negotiate carries them in 2 bytes, SessionSetup in 1.
type SecurityMode uint16

const (
	NegotiateSigningEnabled  SecurityMode = 0x01
	NegotiateSigningRequired SecurityMode = 0x02
)

// SecurityModes lists every security mode bit
var SecurityModes = []SecurityMode{NegotiateSigningEnabled, NegotiateSigningRequired}

// Capabilities flags
type Capabilities uint32

const (
	GlobalCapDFS               Capabilities = 0x00000001
	GlobalCapLeasing           Capabilities = 0x00000002
	GlobalCapLargeMTU          Capabilities = 0x00000004
	GlobalCapMultiChannel      Capabilities = 0x00000008
	GlobalCapPersistentHandles Capabilities = 0x00000010
	GlobalCapDirectoryLeasing  Capabilities = 0x00000020
	GlobalCapEncryption        Capabilities = 0x00000040
)

// CapabilityValues lists every capability bit
var CapabilityValues = []Capabilities{
	GlobalCapDFS, GlobalCapLeasing, GlobalCapLargeMTU, GlobalCapMultiChannel,
	GlobalCapPersistentHandles, GlobalCapDirectoryLeasing, GlobalCapEncryption,
}

// OplockLevel requested by CREATE
type OplockLevel uint8

const (
	OplockLevelNone      OplockLevel = 0x00
	OplockLevelII        OplockLevel = 0x01
	OplockLevelExclusive OplockLevel = 0x08
	OplockLevelBatch     OplockLevel = 0x09
	OplockLevelLease     OplockLevel = 0xFF
)

// OplockLevels lists every oplock level
var OplockLevels = []OplockLevel{
	OplockLevelNone, OplockLevelII, OplockLevelExclusive, OplockLevelBatch, OplockLevelLease,
}

// ParseOplockLevel maps a wire code to an OplockLevel
func ParseOplockLevel(code uint8) (OplockLevel, error) {
	return parseEnum("oplock level", OplockLevel(code), OplockLevels)
}

// ImpersonationLevel requested by CREATE
type ImpersonationLevel uint32

const (
	ImpersonationAnonymous      ImpersonationLevel = 0
	ImpersonationIdentification ImpersonationLevel = 1
	ImpersonationImpersonation  ImpersonationLevel = 2
	ImpersonationDelegate       ImpersonationLevel = 3
)

// ImpersonationLevels lists every impersonation level
var ImpersonationLevels = []ImpersonationLevel{
	ImpersonationAnonymous, ImpersonationIdentification, ImpersonationImpersonation, ImpersonationDelegate,
}

// ParseImpersonationLevel maps a wire code to an ImpersonationLevel
func ParseImpersonationLevel(code uint32) (ImpersonationLevel, error) {
	return parseEnum("impersonation level", ImpersonationLevel(code), ImpersonationLevels)
}

// SessionSetupFlags for SESSION_SETUP requests
type SessionSetupFlags uint8

const (
	SessionSetupFlagNone    SessionSetupFlags = 0x00
	SessionSetupFlagBinding SessionSetupFlags = 0x01
)

// SessionFlags returned in SESSION_SETUP responses
type SessionFlags uint16

const (
	SessionFlagNone        SessionFlags = 0x0000
	SessionFlagIsGuest     SessionFlags = 0x0001
	SessionFlagIsNull      SessionFlags = 0x0002
	SessionFlagEncryptData SessionFlags = 0x0004
)

// ParseSessionFlags maps a wire code to SessionFlags
func ParseSessionFlags(code uint16) (SessionFlags, error) {
	return parseEnum("session flags", SessionFlags(code),
		[]SessionFlags{SessionFlagNone, SessionFlagIsGuest, SessionFlagIsNull, SessionFlagEncryptData})
}

// TreeConnectFlags (SMB 3.1.1)
type TreeConnectFlags uint16

const (
	TreeConnectFlagClusterReconnect TreeConnectFlags = 0x0001
	TreeConnectFlagRedirectToOwner  TreeConnectFlags = 0x0002
	TreeConnectFlagExtensionPresent TreeConnectFlags = 0x0004
)

// TreeConnectFlagValues lists every tree connect flag bit
var TreeConnectFlagValues = []TreeConnectFlags{
	TreeConnectFlagClusterReconnect, TreeConnectFlagRedirectToOwner, TreeConnectFlagExtensionPresent,
}

// CloseFlags for CLOSE requests
type CloseFlags uint16

const (
	CloseFlagPostQueryAttrib CloseFlags = 0x0001
)

// InfoType selects what QUERY_INFO returns
type InfoType uint8

const (
	InfoTypeFile       InfoType = 0x01
	InfoTypeFileSystem InfoType = 0x02
	InfoTypeSecurity   InfoType = 0x03
	InfoTypeQuota      InfoType = 0x04
)

// InfoTypes lists every info type
var InfoTypes = []InfoType{InfoTypeFile, InfoTypeFileSystem, InfoTypeSecurity, InfoTypeQuota}

// ParseInfoType maps a wire code to an InfoType
func ParseInfoType(code uint8) (InfoType, error) {
	return parseEnum("info type", InfoType(code), InfoTypes)
}

// File information classes used with InfoTypeFile
const (
	FileBasicInformation       uint8 = 0x04
	FileStandardInformation    uint8 = 0x05
	FileInternalInformation    uint8 = 0x06
	FileEaInformation          uint8 = 0x07
	FileAccessInformation      uint8 = 0x08
	FilePositionInformation    uint8 = 0x0E
	FileModeInformation        uint8 = 0x10
	FileAlignmentInformation   uint8 = 0x11
	FileAllInformation         uint8 = 0x12
	FileAlternateNameInfo      uint8 = 0x15
	FileStreamInformation      uint8 = 0x16
	FileCompressionInformation uint8 = 0x1C
	FileNetworkOpenInformation uint8 = 0x22
)

// File system information classes used with InfoTypeFileSystem
const (
	FileFsVolumeInformation    uint8 = 0x01
	FileFsSizeInformation      uint8 = 0x03
	FileFsDeviceInformation    uint8 = 0x04
	FileFsAttributeInformation uint8 = 0x05
	FileFsFullSizeInformation  uint8 = 0x07
	FileFsObjectIDInformation  uint8 = 0x08
	FileFsSectorSizeInfo       uint8 = 0x0B
)

// InfoClasses lists the information classes valid for each info type.
// Security and quota queries use class 0.
var InfoClasses = map[InfoType][]uint8{
	InfoTypeFile: {
		FileBasicInformation, FileStandardInformation, FileInternalInformation,
		FileEaInformation, FileAccessInformation, FilePositionInformation,
		FileModeInformation, FileAlignmentInformation, FileAllInformation,
		FileAlternateNameInfo, FileStreamInformation, FileCompressionInformation,
		FileNetworkOpenInformation,
	},
	InfoTypeFileSystem: {
		FileFsVolumeInformation, FileFsSizeInformation, FileFsDeviceInformation,
		FileFsAttributeInformation, FileFsFullSizeInformation, FileFsObjectIDInformation,
		FileFsSectorSizeInfo,
	},
	InfoTypeSecurity: {0},
	InfoTypeQuota:    {0},
}

// Protocol magic bytes
var SMB2ProtocolID = [4]byte{0xFE, 'S', 'M', 'B'}

// Header sizes
const (
	SMB2HeaderSize  = 64 // SMB2 header is always 64 bytes
	FramePrefixSize = 4  // NetBIOS session message prefix
)
