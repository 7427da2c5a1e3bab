// Viewpoint - Collaborative Geographic Feedback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/viewpoint

/*
Package supervisor provides process supervision using suture v4.

The supervisor tree organizes services into three layers for failure
isolation:

	RootSupervisor ("viewpoint")
	├── StorageSupervisor ("storage-layer")
	│   └── StoreGCService
	├── MessagingSupervisor ("messaging-layer")
	│   └── WebSocketHubService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

A crash in the hub restarts only the messaging layer; the HTTP listener
keeps serving REST reads while clients reconnect. Crashed services are
restarted with exponential backoff, and supervision events are logged
through sutureslog into the application's structured logger.
*/
package supervisor
