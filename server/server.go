// Copyright 2023 Northern.tech AS
//
//    Licensed under the Apache License, Version 2.0 (the "License");
//    you may not use this file except in compliance with the License.
//    You may obtain a copy of the License at
//
//        http://www.apache.org/licenses/LICENSE-2.0
//
//    Unless required by applicable law or agreed to in writing, software
//    distributed under the License is distributed on an "AS IS" BASIS,
//    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//    See the License for the specific language governing permissions and
//    limitations under the License.

package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/mendersoftware/go-lib-micro/config"
	"github.com/mendersoftware/go-lib-micro/log"

	api "github.com/mendersoftware/devicehub/api/http"
	"github.com/mendersoftware/devicehub/app"
	"github.com/mendersoftware/devicehub/client/bus"
	"github.com/mendersoftware/devicehub/client/commands"
	"github.com/mendersoftware/devicehub/client/deviceman"
	"github.com/mendersoftware/devicehub/client/events"
	"github.com/mendersoftware/devicehub/client/kafka"
	"github.com/mendersoftware/devicehub/client/nats"
	dconfig "github.com/mendersoftware/devicehub/config"
	"github.com/mendersoftware/devicehub/model"
	"github.com/mendersoftware/devicehub/store"
	"github.com/mendersoftware/devicehub/utils"
	"github.com/mendersoftware/devicehub/worker"
)

// InitAndRun initializes the server and runs it
func InitAndRun(conf config.Reader, dataStore store.DataStore) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Setup(conf.GetBool(dconfig.SettingDebugLog))
	l := log.FromContext(ctx)

	busClient, err := newBusClient(conf)
	if err != nil {
		return errors.Wrap(err, "failed to connect to the message bus")
	}
	//nolint:errcheck
	defer busClient.Close()

	deviceMgmt := deviceman.NewClient(
		conf.GetString(dconfig.SettingDeviceManagementURL))
	eventStore := events.NewClient(
		conf.GetString(dconfig.SettingEventStoreURL))
	commandDelivery := commands.NewClient(
		conf.GetString(dconfig.SettingCommandDeliveryURL))

	clock := utils.RealClock{}
	registration := app.NewRegistrationManager(
		deviceMgmt, registrationPolicy(conf))
	merge := app.NewStateMergeEngine(dataStore)
	presence := app.NewPresenceManager(dataStore, eventStore, busClient,
		app.SendOnceNotificationStrategy{}, clock,
		app.PresenceManagerConfig{
			MissingThreshold: conf.GetDuration(
				dconfig.SettingPresenceMissingThreshold),
			EmitPresent: conf.GetBool(
				dconfig.SettingPresenceEmitPresent),
		})
	registry := app.NewHandlerRegistry()
	registry.Register(app.OperationTypeInvokeCommand,
		app.NewInvokeCommandHandler(commandDelivery))
	batch := app.NewBatchOperationManager(
		dataStore, busClient, registry, clock)

	if seedFile := conf.GetString(dconfig.SettingDeviceSeedFile); seedFile != "" {
		builder := app.NewFileDeviceBuilder(seedFile, registration)
		if err := builder.Build(ctx); err != nil {
			return errors.Wrap(err, "failed to seed devices")
		}
	}

	devicehubApp := app.New(dataStore, deviceMgmt, eventStore,
		commandDelivery, registration, batch)

	broker := api.NewStateChangeBroker()
	router, err := api.NewRouter(devicehubApp, broker)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:    conf.GetString(dconfig.SettingListen),
		Handler: router,
	}

	workersDone := make(chan struct{})
	go func() {
		defer close(workersDone)
		worker.Run(ctx, busClient, []worker.Worker{
			worker.NewInboundWorker(
				busClient, registration, eventStore),
			worker.NewMergeWorker(merge, presence),
			worker.NewBatchExpansionWorker(batch),
			worker.NewBatchExecutionWorker(batch),
		})
	}()
	go func() {
		err := broker.Run(ctx, busClient)
		if err != nil && ctx.Err() == nil {
			l.Errorf("state-change broker terminated: %s", err)
		}
	}()
	go worker.RunPresenceScan(ctx, presence,
		conf.GetDuration(dconfig.SettingPresenceCheckInterval))

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, unix.SIGINT, unix.SIGTERM)
	<-quit

	l.Info("Shutdown Server ...")

	ctxWithTimeout, cancel2 := context.WithTimeout(
		context.Background(), 5*time.Second)
	defer cancel2()
	if err := srv.Shutdown(ctxWithTimeout); err != nil {
		l.Fatal("Server Shutdown: ", err)
	}

	// stop the consumers; in-flight messages finish before Run returns
	cancel()
	select {
	case <-workersDone:
	case <-ctxWithTimeout.Done():
		l.Warn("timed out waiting for workers to drain")
	}

	return nil
}

// newBusClient selects the message bus backend from the configuration.
func newBusClient(conf config.Reader) (bus.Client, error) {
	backend := conf.GetString(dconfig.SettingBusBackend)
	switch backend {
	case "kafka":
		brokers := strings.Split(
			conf.GetString(dconfig.SettingKafkaBrokers), ",")
		return kafka.NewClient(brokers), nil
	case "nats":
		return nats.NewClientWithDefaults(
			conf.GetString(dconfig.SettingNatsURI))
	default:
		return nil, errors.Errorf(
			"unknown bus backend %q", backend)
	}
}

// registrationPolicy reads the first-contact registration policy from the
// configuration.
func registrationPolicy(conf config.Reader) model.RegistrationPolicy {
	deviceType := conf.GetString(dconfig.SettingDefaultDeviceType)
	customer := conf.GetString(dconfig.SettingDefaultCustomer)
	area := conf.GetString(dconfig.SettingDefaultArea)
	asset := conf.GetString(dconfig.SettingDefaultAsset)
	return model.RegistrationPolicy{
		AllowNewDevices:        conf.GetBool(dconfig.SettingAllowNewDevices),
		UseDefaultDeviceType:   deviceType != "",
		DefaultDeviceTypeToken: deviceType,
		UseDefaultCustomer:     customer != "",
		DefaultCustomerToken:   customer,
		UseDefaultArea:         area != "",
		DefaultAreaToken:       area,
		UseDefaultAsset:        asset != "",
		DefaultAssetToken:      asset,
	}
}
