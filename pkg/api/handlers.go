package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
	})
}

func (s *Server) handleInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"identity":  s.node.Identity(),
		"room":      s.room,
		"addresses": s.node.RoutableAddresses(),
	})
}

func (s *Server) handlePeers(c *gin.Context) {
	known := s.peers.List()
	roomPeers := make([]gin.H, 0, len(known))
	for _, p := range known {
		roomPeers = append(roomPeers, gin.H{
			"prefix": p.Prefix,
			"name":   p.Name,
		})
	}

	connected := s.node.ConnectedContacts()
	contacts := make([]gin.H, 0, len(connected))
	for _, contact := range connected {
		contacts = append(contacts, gin.H{
			"identity": contact.Identity,
			"addrs":    contact.Addrs,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"room_peers": roomPeers,
		"connected":  contacts,
	})
}

func (s *Server) handleTelemetry(c *gin.Context) {
	t := s.node.Telemetry(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"stored_keys":       t.StoredKeys,
		"routing_peers":     t.RoutingPeers,
		"gossip_topics":     t.GossipTopics,
		"gossip_mesh_peers": t.GossipMeshPeers,
		"requests_sent":     t.RequestsSent,
		"requests_received": t.RequestsReceived,
		"responses_ok":      t.ResponsesOK,
		"transport_errors":  t.TransportErrors,
		"publishes_sent":    t.PublishesSent,
		"messages_received": t.MessagesReceived,
	})
}
