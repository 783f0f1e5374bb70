package sensors

import (
	"fmt"
	"time"
	"waste-route-service/internal/config"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Client is the part of the paho client the sensors package uses.
type Client interface {
	IsConnected() bool
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token
}

type MQTTClient struct {
	client Client
}

// NewMQTTClient connects to cfg.Broker and blocks until the connection is
// established or fails.
func NewMQTTClient(cfg config.MQTTConfig, clientSuffix string) (*MQTTClient, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID + clientSuffix).
		SetConnectTimeout(5 * time.Second).
		SetAutoReconnect(true)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", cfg.Broker, token.Error())
	}
	return &MQTTClient{client: client}, nil
}

func (c *MQTTClient) Publish(topic string, payload []byte, qos byte) error {
	token := c.client.Publish(topic, qos, false, payload)
	token.Wait()
	return token.Error()
}

func (c *MQTTClient) Subscribe(topic string, qos byte, cb mqtt.MessageHandler) error {
	token := c.client.Subscribe(topic, qos, cb)
	token.Wait()
	return token.Error()
}

func (c *MQTTClient) Close() {
	if c.client.IsConnected() {
		c.client.Disconnect(250)
	}
}
