// Package core provides the client logic of patientdesk, separated from
// any UI.
//
// # Components
//
//   - [Editor]: the record form, a working copy with per-field validation
//     under a named [RuleSet] ([LenientRules] or [StrictRules]).
//   - [ListController]: the patient table. It filters, pages and sorts in
//     client paging mode, or forwards page/sort/search to the backend in
//     server paging mode, and owns the inline-edit state machine
//     (Browsing, EditingRow) and the delete confirmation gate.
//   - [Coordinator]: owns the fetch cycle and the [Backend].
//
// # Messages and Effects
//
// Components never call the backend. Each has an Update method that takes
// a [Msg] and returns the [Effect] values it wants performed. The
// coordinator runs effects with [Coordinator.Run] and feeds the result
// messages back through [Coordinator.Apply]. [Coordinator.Dispatch] does
// this synchronously; the terminal UI does it asynchronously with tea.Cmds.
//
// Every fetch carries a token. Results whose token is not the latest are
// dropped, so a slow response never overwrites a newer one.
package core
