// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

/*
Package websocket pushes feed-change notifications to connected clients.

When an invalidation is applied, clients whose cached pages may be stale
receive a feed_invalidated message and can refetch. The hub is one of
the invalidation bus handlers:

	hub := websocket.NewHub()
	bus.Subscribe("websocket", hub.NotifyScope)

Routing:

  - user scope: only the sockets of that user
  - item, trending and global scopes: every socket

Each client has two goroutines: readPump answers application pings and
tracks pong deadlines, writePump drains the send buffer and sends
keepalive pings. A client whose buffer is full is disconnected rather
than allowed to block the hub.

Message format:

	{"type":"feed_invalidated","data":{"scope":"user","id":"u1","timestamp":"2026-03-10T12:00:00Z"}}

The hub runs under the supervisor through RunWithContext and closes all
clients when its context is canceled.
*/
package websocket
