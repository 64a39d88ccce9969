// Package services implements the driving port interfaces.
// Services contain the core orchestration logic and call out to
// driven ports (adapters):
//
//   - Throttle: leading-edge rate limit on raw query edits
//   - Pager: pagination state machine for one search session
//   - Repository: catalog searches, the serialized storage queue and
//     the observable result channels
//   - SettingsService: typed access to the configuration store
//
// Services are pure Go with no CGO.
package services
