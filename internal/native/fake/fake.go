package fake

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/slok/idev/internal/log"
	"github.com/slok/idev/internal/model"
	"github.com/slok/idev/internal/native"
)

// DefaultDeviceUDID is the UDID of the device simulated when no devices are configured.
const DefaultDeviceUDID = "00008030-001C2D3E4F5A6B7C"

// Native call names, used for call recording and failure injection.
const (
	OpInit                = "init"
	OpCleanup             = "cleanup"
	OpDeviceList          = "idevice_get_device_list"
	OpDeviceNew           = "idevice_new"
	OpDeviceFree          = "idevice_free"
	OpClientNew           = "lockdownd_client_new_with_handshake"
	OpClientFree          = "lockdownd_client_free"
	OpGetValue            = "lockdownd_get_value"
	OpStartService        = "lockdownd_start_service"
	OpServiceInfo         = "lockdownd_service_descriptor_info"
	OpServiceFree         = "lockdownd_service_descriptor_free"
	OpMounterNew          = "mobile_image_mounter_new"
	OpMounterFree         = "mobile_image_mounter_free"
	OpMounterUploadImage  = "mobile_image_mounter_upload_image"
	OpMounterMountImage   = "mobile_image_mounter_mount_image"
	OpMounterLookupImage  = "mobile_image_mounter_lookup_image"
	OpMounterHangup       = "mobile_image_mounter_hangup"
	uploadChunkSize       = 64 * 1024
	firstServicePort      = 49152
	mountStatusComplete   = "Complete"
	violationUseAfterFree = "use after free"
	violationDoubleFree   = "double free"
	violationWrongKind    = "wrong handle kind"
	violationUnknown      = "unknown handle"
)

// Kind is the kind of native object behind a handle.
type Kind string

const (
	KindDevice  Kind = "device"
	KindClient  Kind = "lockdown-client"
	KindService Kind = "lockdown-service"
	KindMounter Kind = "image-mounter"
)

// Violation is a native misuse that would have been undefined behaviour on a
// real library.
type Violation struct {
	Op     string
	Handle native.Handle
	Reason string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s on handle %d: %s", v.Op, v.Handle, v.Reason)
}

// LibraryConfig is the configuration for the fake native library.
type LibraryConfig struct {
	Devices   []model.Device
	InitError error
	Logger    log.Logger
}

func (c *LibraryConfig) defaults() error {
	if len(c.Devices) == 0 {
		c.Devices = []model.Device{DefaultDevice()}
	}

	seen := map[string]bool{}
	for _, d := range c.Devices {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("invalid device: %w", err)
		}
		if seen[d.UDID] {
			return fmt.Errorf("device %s: %w", d.UDID, model.ErrAlreadyExists)
		}
		seen[d.UDID] = true
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "native.Fake"})
	return nil
}

// DefaultDevice returns the device simulated when none is configured.
func DefaultDevice() model.Device {
	return model.Device{
		UDID: DefaultDeviceUDID,
		Values: map[string]map[string]any{
			"": {
				"DeviceName":     "idev simulator",
				"ProductType":    "iPhone12,1",
				"ProductVersion": "16.7.2",
				"BuildVersion":   "20H115",
				"UniqueDeviceID": DefaultDeviceUDID,
			},
			"com.apple.disk_usage": {
				"TotalDiskCapacity": uint64(64000000000),
			},
		},
		Services:   []string{model.ImageMounterServiceID, "com.apple.afc", "com.apple.syslog_relay"},
		ImageTypes: []string{model.DeveloperImageType},
	}
}

type entry struct {
	kind   Kind
	udid   string
	parent native.Handle
	freed  bool
	frees  int

	// Service data.
	port uint16

	// Mounter data.
	hungUp bool
}

type stagedImage struct {
	imageType string
	image     []byte
	signature []byte
}

// Library is a fake implementation of native.Library. It simulates devices in
// memory and keeps a handle table that records every misuse a real library
// would turn into memory corruption.
type Library struct {
	devices  map[string]model.Device
	initErr  error
	logger   log.Logger
	mu       sync.Mutex
	entries  map[native.Handle]*entry
	next     native.Handle
	nextPort uint16
	staged   map[string]stagedImage
	mounted  map[string]map[string][]byte
	failures map[string][]native.Status

	calls      []string
	violations []Violation
	inits      int
	cleanups   int
}

// NewLibrary creates a new fake native library.
func NewLibrary(cfg LibraryConfig) (*Library, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	devices := make(map[string]model.Device, len(cfg.Devices))
	for _, d := range cfg.Devices {
		devices[d.UDID] = d
	}

	return &Library{
		devices:  devices,
		initErr:  cfg.InitError,
		logger:   cfg.Logger,
		entries:  map[native.Handle]*entry{},
		next:     0x1000,
		nextPort: firstServicePort,
		staged:   map[string]stagedImage{},
		mounted:  map[string]map[string][]byte{},
		failures: map[string][]native.Status{},
	}, nil
}

// FailNext makes the next call to op return st instead of running.
func (l *Library) FailNext(op string, st native.Status) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failures[op] = append(l.failures[op], st)
}

// Calls returns the names of the native calls received, in order.
func (l *Library) Calls() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

// CallCount returns how many times op was called.
func (l *Library) CallCount(op string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for _, c := range l.calls {
		if c == op {
			n++
		}
	}
	return n
}

// Violations returns the misuses detected so far.
func (l *Library) Violations() []Violation {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Violation(nil), l.violations...)
}

// FreeCount returns how many times h was freed.
func (l *Library) FreeCount(h native.Handle) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[h]
	if !ok {
		return 0
	}
	return e.frees
}

// LiveHandles returns the number of native objects still allocated. Freeing an
// object destroys everything derived from it.
func (l *Library) LiveHandles() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for _, e := range l.entries {
		if l.alive(e) {
			n++
		}
	}
	return n
}

func (l *Library) alive(e *entry) bool {
	for cur := e; cur != nil; cur = l.entries[cur.parent] {
		if cur.freed {
			return false
		}
	}
	return true
}

// Lifecycle returns how many times the library was initialized and cleaned up.
func (l *Library) Lifecycle() (inits, cleanups int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inits, l.cleanups
}

// Mounted returns the image types mounted on a device.
func (l *Library) Mounted(udid string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	types := make([]string, 0, len(l.mounted[udid]))
	for t := range l.mounted[udid] {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

func (l *Library) Init() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.calls = append(l.calls, OpInit)
	if l.initErr != nil {
		return l.initErr
	}
	l.inits++
	l.logger.Debugf("Native library initialized")
	return nil
}

func (l *Library) Cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.calls = append(l.calls, OpCleanup)
	l.cleanups++
	l.logger.Debugf("Native library cleaned up")
}

func (l *Library) DeviceList() ([]string, native.Status) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if st, ok := l.begin(OpDeviceList); !ok {
		return nil, st
	}

	if len(l.devices) == 0 {
		return nil, native.DeviceNoDevice
	}

	udids := make([]string, 0, len(l.devices))
	for udid := range l.devices {
		udids = append(udids, udid)
	}
	sort.Strings(udids)

	return udids, native.StatusSuccess
}

func (l *Library) DeviceNew(udid string) (native.Handle, native.Status) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if st, ok := l.begin(OpDeviceNew); !ok {
		return native.NullHandle, st
	}

	if udid == "" {
		return native.NullHandle, native.DeviceInvalidArg
	}
	if _, ok := l.devices[udid]; !ok {
		return native.NullHandle, native.DeviceNoDevice
	}

	h := l.alloc(&entry{kind: KindDevice, udid: udid})
	l.logger.Debugf("Opened device %s as handle %d", udid, h)
	return h, native.StatusSuccess
}

func (l *Library) DeviceFree(device native.Handle) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.free(OpDeviceFree, device, KindDevice)
}

func (l *Library) LockdownClientNewWithHandshake(device native.Handle, label string) (native.Handle, native.Status) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if st, ok := l.begin(OpClientNew); !ok {
		return native.NullHandle, st
	}

	dev, ok := l.use(OpClientNew, device, KindDevice)
	if !ok {
		return native.NullHandle, native.LockdownInvalidArg
	}

	h := l.alloc(&entry{kind: KindClient, udid: dev.udid, parent: device})
	l.logger.Debugf("Lockdown client %q opened on %s as handle %d", label, dev.udid, h)
	return h, native.StatusSuccess
}

func (l *Library) LockdownClientFree(client native.Handle) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.free(OpClientFree, client, KindClient)
}

func (l *Library) LockdownGetValue(client native.Handle, domain, key string) (any, native.Status) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if st, ok := l.begin(OpGetValue); !ok {
		return nil, st
	}

	c, ok := l.use(OpGetValue, client, KindClient)
	if !ok {
		return nil, native.LockdownInvalidArg
	}

	values, ok := l.devices[c.udid].Values[domain]
	if !ok {
		return nil, native.LockdownMissingValue
	}

	if key == "" {
		dict := make(map[string]any, len(values))
		for k, v := range values {
			dict[k] = v
		}
		return dict, native.StatusSuccess
	}

	v, ok := values[key]
	if !ok {
		return nil, native.LockdownMissingValue
	}

	return v, native.StatusSuccess
}

func (l *Library) LockdownStartService(client native.Handle, identifier string) (native.Handle, native.Status) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if st, ok := l.begin(OpStartService); !ok {
		return native.NullHandle, st
	}

	c, ok := l.use(OpStartService, client, KindClient)
	if !ok {
		return native.NullHandle, native.LockdownInvalidArg
	}

	if identifier == "" {
		return native.NullHandle, native.LockdownInvalidArg
	}
	if !l.devices[c.udid].HasService(identifier) {
		return native.NullHandle, native.LockdownInvalidService
	}

	port := l.nextPort
	l.nextPort++

	h := l.alloc(&entry{kind: KindService, udid: c.udid, parent: client, port: port})
	l.logger.Debugf("Service %s started on %s port %d as handle %d", identifier, c.udid, port, h)
	return h, native.StatusSuccess
}

func (l *Library) LockdownServiceInfo(service native.Handle) (uint16, bool, native.Status) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if st, ok := l.begin(OpServiceInfo); !ok {
		return 0, false, st
	}

	s, ok := l.use(OpServiceInfo, service, KindService)
	if !ok {
		return 0, false, native.LockdownInvalidArg
	}

	return s.port, false, native.StatusSuccess
}

func (l *Library) LockdownServiceDescriptorFree(service native.Handle) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.free(OpServiceFree, service, KindService)
}

func (l *Library) MobileImageMounterNew(device, service native.Handle) (native.Handle, native.Status) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if st, ok := l.begin(OpMounterNew); !ok {
		return native.NullHandle, st
	}

	dev, ok := l.use(OpMounterNew, device, KindDevice)
	if !ok {
		return native.NullHandle, native.MounterInvalidArg
	}
	svc, ok := l.use(OpMounterNew, service, KindService)
	if !ok {
		return native.NullHandle, native.MounterInvalidArg
	}
	if svc.udid != dev.udid {
		return native.NullHandle, native.MounterInvalidArg
	}

	h := l.alloc(&entry{kind: KindMounter, udid: dev.udid, parent: service})
	l.logger.Debugf("Image mounter connected to %s port %d as handle %d", dev.udid, svc.port, h)
	return h, native.StatusSuccess
}

func (l *Library) MobileImageMounterFree(mounter native.Handle) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.free(OpMounterFree, mounter, KindMounter)
}

func (l *Library) MobileImageMounterUploadImage(mounter native.Handle, imageType string, image, signature []byte, cb native.UploadCallback) native.Status {
	l.mu.Lock()
	defer l.mu.Unlock()

	if st, ok := l.begin(OpMounterUploadImage); !ok {
		return st
	}

	m, st := l.useMounter(OpMounterUploadImage, mounter)
	if st != native.StatusSuccess {
		return st
	}

	if len(image) == 0 || len(signature) == 0 || cb == nil {
		return native.MounterInvalidArg
	}

	dev := l.devices[m.udid]
	if dev.Locked {
		return native.MounterDeviceLocked
	}
	if !dev.SupportsImageType(imageType) {
		return native.MounterNotSupported
	}

	total := uint64(len(image))
	for sent := uint64(0); sent < total; {
		sent += min(uint64(uploadChunkSize), total-sent)
		if cb(sent, total) < 0 {
			return native.MounterCommandFailed
		}
	}

	l.staged[m.udid] = stagedImage{
		imageType: imageType,
		image:     bytes.Clone(image),
		signature: bytes.Clone(signature),
	}
	l.logger.Debugf("Uploaded %d bytes image to %s", total, m.udid)

	return native.StatusSuccess
}

func (l *Library) MobileImageMounterMountImage(mounter native.Handle, imagePath string, signature []byte, imageType string) (any, native.Status) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if st, ok := l.begin(OpMounterMountImage); !ok {
		return nil, st
	}

	m, st := l.useMounter(OpMounterMountImage, mounter)
	if st != native.StatusSuccess {
		return nil, st
	}

	if imagePath == "" || len(signature) == 0 {
		return nil, native.MounterInvalidArg
	}

	dev := l.devices[m.udid]
	if dev.Locked {
		return nil, native.MounterDeviceLocked
	}

	staged, ok := l.staged[m.udid]
	if !ok || imagePath != model.DefaultImageStagingPath {
		return map[string]any{"Error": "ImageMountFailed", "DetailedError": "no image at " + imagePath}, native.MounterCommandFailed
	}
	if staged.imageType != imageType || !bytes.Equal(staged.signature, signature) {
		return map[string]any{"Error": "ImageMountFailed", "DetailedError": "signature does not match staged image"}, native.MounterCommandFailed
	}

	if l.mounted[m.udid] == nil {
		l.mounted[m.udid] = map[string][]byte{}
	}
	if _, ok := l.mounted[m.udid][imageType]; ok {
		return map[string]any{"Error": "ImageMountFailed", "DetailedError": "image type already mounted"}, native.MounterCommandFailed
	}
	l.mounted[m.udid][imageType] = staged.signature
	delete(l.staged, m.udid)

	l.logger.Debugf("Mounted %q image on %s", imageType, m.udid)
	return map[string]any{"Status": mountStatusComplete}, native.StatusSuccess
}

func (l *Library) MobileImageMounterLookupImage(mounter native.Handle, imageType string) (any, native.Status) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if st, ok := l.begin(OpMounterLookupImage); !ok {
		return nil, st
	}

	m, st := l.useMounter(OpMounterLookupImage, mounter)
	if st != native.StatusSuccess {
		return nil, st
	}

	signatures := []any{}
	if sig, ok := l.mounted[m.udid][imageType]; ok {
		signatures = append(signatures, bytes.Clone(sig))
	}

	return map[string]any{
		"Status":         mountStatusComplete,
		"ImageSignature": signatures,
	}, native.StatusSuccess
}

func (l *Library) MobileImageMounterHangup(mounter native.Handle) native.Status {
	l.mu.Lock()
	defer l.mu.Unlock()

	if st, ok := l.begin(OpMounterHangup); !ok {
		return st
	}

	m, st := l.useMounter(OpMounterHangup, mounter)
	if st != native.StatusSuccess {
		return st
	}
	m.hungUp = true

	return native.StatusSuccess
}

// begin records the call and pops an injected failure if there is one.
func (l *Library) begin(op string) (native.Status, bool) {
	l.calls = append(l.calls, op)

	queue := l.failures[op]
	if len(queue) == 0 {
		return native.StatusSuccess, true
	}

	st := queue[0]
	l.failures[op] = queue[1:]
	l.logger.Debugf("Injected failure %d on %s", st, op)
	return st, false
}

func (l *Library) alloc(e *entry) native.Handle {
	l.next += 0x10
	l.entries[l.next] = e
	return l.next
}

// use resolves h and checks it, and every object it depends on, is still alive.
func (l *Library) use(op string, h native.Handle, kind Kind) (*entry, bool) {
	e, ok := l.entries[h]
	if !ok {
		l.violate(op, h, violationUnknown)
		return nil, false
	}
	if e.kind != kind {
		l.violate(op, h, violationWrongKind)
		return nil, false
	}

	if !l.alive(e) {
		l.violate(op, h, violationUseAfterFree)
		return nil, false
	}

	return e, true
}

func (l *Library) useMounter(op string, h native.Handle) (*entry, native.Status) {
	m, ok := l.use(op, h, KindMounter)
	if !ok {
		return nil, native.MounterInvalidArg
	}
	if m.hungUp {
		return nil, native.MounterConnFailed
	}
	return m, native.StatusSuccess
}

func (l *Library) free(op string, h native.Handle, kind Kind) {
	l.calls = append(l.calls, op)

	e, ok := l.entries[h]
	if ok && e.freed {
		e.frees++
		l.violate(op, h, violationDoubleFree)
		return
	}

	if _, ok := l.use(op, h, kind); !ok {
		if e != nil {
			e.frees++
			e.freed = true
		}
		return
	}

	e.frees++
	e.freed = true
	l.logger.Debugf("Freed %s handle %d", e.kind, h)
}

func (l *Library) violate(op string, h native.Handle, reason string) {
	v := Violation{Op: op, Handle: h, Reason: reason}
	l.violations = append(l.violations, v)
	l.logger.Errorf("Native misuse: %s", v)
}

// Summary returns a one line description of the handle table, useful on test failures.
func (l *Library) Summary() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d handles, %d violations", len(l.entries), len(l.violations))
	for _, v := range l.violations {
		fmt.Fprintf(&sb, "; %s", v)
	}
	return sb.String()
}
