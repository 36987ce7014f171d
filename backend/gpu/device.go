package gpu

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// ErrNoDevice is returned when no usable GPU device can be acquired.
var ErrNoDevice = errors.New("gpu: no device available")

// deviceContext bundles the HAL handles every backend instance shares.
// The device is either opened lazily from the first available adapter or
// adopted from a host application via SetDeviceProvider.
type deviceContext struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	// owned reports whether this package opened the device and is
	// responsible for destroying it.
	owned bool
}

var (
	deviceMu  sync.Mutex
	shared    *deviceContext
	deviceErr error
)

// SetDeviceProvider adopts a GPU device from the host application
// instead of opening one. The provider must also implement
// gpucontext.HalProvider so the raw HAL handles are reachable.
//
// Call before the first surface of this backend type is created.
func SetDeviceProvider(provider gpucontext.DeviceProvider) error {
	hp, ok := provider.(gpucontext.HalProvider)
	if !ok {
		return fmt.Errorf("%w: provider does not expose HAL handles", ErrNoDevice)
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok {
		return fmt.Errorf("%w: provider HalDevice is not hal.Device", ErrNoDevice)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok {
		return fmt.Errorf("%w: provider HalQueue is not hal.Queue", ErrNoDevice)
	}

	deviceMu.Lock()
	defer deviceMu.Unlock()
	shared = &deviceContext{device: device, queue: queue}
	deviceErr = nil
	return nil
}

// acquireDevice returns the shared device context, opening one on first
// use. Failure is sticky: once opening fails, every later call returns
// the same error without retrying.
func acquireDevice() (*deviceContext, error) {
	deviceMu.Lock()
	defer deviceMu.Unlock()
	if shared != nil {
		return shared, nil
	}
	if deviceErr != nil {
		return nil, deviceErr
	}
	ctx, err := openDevice()
	if err != nil {
		deviceErr = err
		return nil, err
	}
	shared = ctx
	return shared, nil
}

// openDevice opens the first usable adapter, preferring real GPUs over
// software implementations.
func openDevice() (*deviceContext, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("%w: vulkan backend not registered", ErrNoDevice)
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("%w: create instance: %w", ErrNoDevice, err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return nil, fmt.Errorf("%w: no adapters", ErrNoDevice)
	}
	selected := &adapters[0]
	for i := range adapters {
		dt := adapters[i].Info.DeviceType
		if dt == gputypes.DeviceTypeDiscreteGPU || dt == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrNoDevice, selected.Info.Name, err)
	}
	return &deviceContext{
		instance: instance,
		device:   openDev.Device,
		queue:    openDev.Queue,
		owned:    true,
	}, nil
}
