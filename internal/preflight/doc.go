// Package preflight provides readiness checks for the credentials, camera
// device, directories and AR engine endpoint that the mirror depends on.
//
// These checks run in two contexts:
//   - The daemon runs RunAll at startup and logs failures without refusing
//     to start; the session itself reports the user-facing failure.
//   - The CLI "qween status" and "qween probe" commands display the same
//     results.
package preflight
