// Package lib provides a Go SDK to query and prepare devices programmatically.
//
// It drives the same services as the idev CLI: listing attached devices,
// reading lockdown values, starting lockdown services and mounting developer
// disk images. Every native object the SDK opens is released exactly once,
// children before their parents, even when an operation fails halfway.
//
// # Quick Start
//
//	client, err := lib.New(ctx, lib.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	udids, _ := client.ListDevices(ctx)
//	version, _ := client.GetValue(ctx, udids[0], "", "ProductVersion")
//
// # Native Library
//
// Set [Config].Library to a binding of the native device library. When it is
// nil the SDK uses a simulated library with [Config].Devices attached, useful
// for tests and for trying the SDK without hardware.
//
// # Disk Images
//
// Mount a developer disk image. The signature defaults to the image path with
// a ".signature" suffix:
//
//	res, err := client.MountImage(ctx, lib.MountImageOpts{
//	    ImagePath: "/path/to/DeveloperDiskImage.dmg",
//	    Progress: func(sent, total uint64) {
//	        fmt.Printf("%d/%d\n", sent, total)
//	    },
//	})
//
// # History
//
// Every device operation is journaled in the SQLite database at
// [Config].DBPath:
//
//	ops, _ := client.History(ctx, &lib.HistoryOpts{Kind: lib.OperationKindMountImage})
//
// # Error Handling
//
// Errors can be checked with [errors.Is] against:
//
//   - [ErrNotFound]: Device, lockdown value or service does not exist.
//   - [ErrNotValid]: Invalid input.
//   - [ErrMissingDependency]: A native object was used after it, or one of
//     its parents, was released.
package lib
