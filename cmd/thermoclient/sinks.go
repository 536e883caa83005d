package main

import (
	"context"
	"fmt"

	"thermoclient/internal/config"
	"thermoclient/internal/control"
	"thermoclient/internal/device"
	"thermoclient/internal/logger"
	"thermoclient/internal/models"
	"thermoclient/internal/publish"
	"thermoclient/internal/repository"
)

const mqttClientID = "thermoclient"

// buildSinks assembles the per-cycle snapshot consumers. The store is always
// present; the relay and the MQTT mirror depend on the settings. A relay
// that cannot be opened is fatal, an unreachable broker is not.
func buildSinks(settings config.Settings, store repository.StateRepo, log *logger.Logger) ([]control.NamedSink, func(), error) {
	sinks := []control.NamedSink{storeSink(store)}
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if settings.RelayEnabled() {
		relay, err := device.NewGPIORelay(settings.RelayChip, settings.RelayPin)
		if err != nil {
			return nil, nil, fmt.Errorf("open relay %s:%d: %w", settings.RelayChip, settings.RelayPin, err)
		}
		log.Infow("relay_opened", "chip", settings.RelayChip, "pin", settings.RelayPin)
		sinks = append(sinks, relaySink(relay))
		closers = append(closers, func() {
			if err := relay.Close(); err != nil {
				log.Errorw("relay_close_failed", "err", err)
			}
		})
	}

	if settings.MQTTBroker != "" {
		pub, err := publish.NewRealPublisher(settings.MQTTBroker, settings.MQTTTopic, mqttClientID)
		if err != nil {
			log.Errorw("mqtt_connect_failed", "broker", settings.MQTTBroker, "err", err)
		} else {
			log.Infow("mqtt_connected", "broker", settings.MQTTBroker, "topic", settings.MQTTTopic)
			sinks = append(sinks, mqttSink(pub))
			closers = append(closers, func() { _ = pub.Close() })
		}
	}

	return sinks, closeAll, nil
}

func storeSink(store repository.StateRepo) control.NamedSink {
	return control.NamedSink{Name: "store", Sink: control.SinkFunc(store.Save)}
}

func relaySink(r device.Relay) control.NamedSink {
	return control.NamedSink{Name: "relay", Sink: control.SinkFunc(func(_ context.Context, st models.ThermostatState) error {
		return r.Set(st.HeaterOn)
	})}
}

func mqttSink(p publish.Publisher) control.NamedSink {
	return control.NamedSink{Name: "mqtt", Sink: control.SinkFunc(func(_ context.Context, st models.ThermostatState) error {
		return p.PublishState(st)
	})}
}
