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

package config

import (
	"github.com/mendersoftware/go-lib-micro/config"
)

const (
	// SettingListen is the config key for the listen address
	SettingListen = "listen"
	// SettingListenDefault is the default value for the listen address
	SettingListenDefault = ":8080"

	// SettingBusBackend is the config key for the message bus backend,
	// one of "kafka" or "nats". Kafka is the backend that provides the
	// per-key ordered partitions described in the concurrency model.
	SettingBusBackend = "bus_backend"
	// SettingBusBackendDefault is the default value for the bus backend
	SettingBusBackendDefault = "kafka"

	// SettingKafkaBrokers is the config key for the comma-separated
	// kafka broker list
	SettingKafkaBrokers = "kafka_brokers"
	// SettingKafkaBrokersDefault is the default value for the kafka
	// broker list
	SettingKafkaBrokersDefault = "localhost:9092"

	// SettingNatsURI is the config key for the nats uri
	SettingNatsURI = "nats_uri"
	// SettingNatsURIDefault is the default value for the nats uri
	SettingNatsURIDefault = "nats://localhost:4222"

	// SettingMongo is the config key for the mongo URL
	SettingMongo = "mongo_url"
	// SettingMongoDefault is the default value for the mongo URL
	SettingMongoDefault = "mongodb://mender-mongo:27017"

	// SettingDbName is the config key for the mongo database name
	SettingDbName = "mongo_dbname"
	// SettingDbNameDefault is the default value for the mongo database name
	SettingDbNameDefault = "devicehub"

	// SettingDbSSL is the config key for the mongo SSL setting
	SettingDbSSL = "mongo_ssl"
	// SettingDbSSLDefault is the default value for the mongo SSL setting
	SettingDbSSLDefault = false

	// SettingDbSSLSkipVerify is the config key for the mongo SSL skip verify setting
	SettingDbSSLSkipVerify = "mongo_ssl_skipverify"
	// SettingDbSSLSkipVerifyDefault is the default value for the mongo SSL skip verify setting
	SettingDbSSLSkipVerifyDefault = false

	// SettingDbUsername is the config key for the mongo username
	SettingDbUsername = "mongo_username"

	// SettingDbPassword is the config key for the mongo password
	SettingDbPassword = "mongo_password"

	// SettingDebugLog is the config key for the turning on the debug log
	SettingDebugLog = "debug_log"
	// SettingDebugLogDefault is the default value for the debug log enabling
	SettingDebugLogDefault = false

	// SettingDeviceManagementURL is the config key for the
	// device-management service url
	SettingDeviceManagementURL = "devicemanagement_url"
	// SettingDeviceManagementURLDefault is the default value for the
	// device-management service url
	SettingDeviceManagementURLDefault = "http://mender-device-management:8080"

	// SettingEventStoreURL is the config key for the event store url
	SettingEventStoreURL = "eventstore_url"
	// SettingEventStoreURLDefault is the default value for the event
	// store url
	SettingEventStoreURLDefault = "http://mender-event-store:8080"

	// SettingCommandDeliveryURL is the config key for the
	// command-delivery service url
	SettingCommandDeliveryURL = "commanddelivery_url"
	// SettingCommandDeliveryURLDefault is the default value for the
	// command-delivery service url
	SettingCommandDeliveryURLDefault = "http://mender-command-delivery:8080"

	// SettingAllowNewDevices is the config key for allowing unknown
	// devices to register on first contact
	SettingAllowNewDevices = "registration.allow_new_devices"
	// SettingAllowNewDevicesDefault is the default value for allowing
	// new devices
	SettingAllowNewDevicesDefault = true

	// SettingDefaultDeviceType is the config key for the default device
	// type token used when a registration carries none. An empty value
	// disables the default.
	SettingDefaultDeviceType = "registration.default_device_type"

	// SettingDefaultCustomer is the config key for the default customer
	// token used in new assignments
	SettingDefaultCustomer = "registration.default_customer"

	// SettingDefaultArea is the config key for the default area token
	// used in new assignments
	SettingDefaultArea = "registration.default_area"

	// SettingDefaultAsset is the config key for the default asset token
	// used in new assignments
	SettingDefaultAsset = "registration.default_asset"

	// SettingDeviceSeedFile is the config key for the optional JSON file
	// of device registrations applied at startup
	SettingDeviceSeedFile = "registration.seed_file"

	// SettingPresenceCheckInterval is the config key for the interval
	// between presence scans
	SettingPresenceCheckInterval = "presence.check_interval"
	// SettingPresenceCheckIntervalDefault is the default value for the
	// presence scan interval
	SettingPresenceCheckIntervalDefault = "10m"

	// SettingPresenceMissingThreshold is the config key for the silence
	// duration after which a device is considered missing
	SettingPresenceMissingThreshold = "presence.missing_threshold"
	// SettingPresenceMissingThresholdDefault is the default value for
	// the missing threshold
	SettingPresenceMissingThresholdDefault = "8h"

	// SettingPresenceEmitPresent is the config key for emitting a
	// "present" state-change event when a missing device reappears
	SettingPresenceEmitPresent = "presence.emit_present"
	// SettingPresenceEmitPresentDefault is the default value for
	// emitting "present" state-change events
	SettingPresenceEmitPresentDefault = true
)

var (
	// Defaults are the default configuration settings
	Defaults = []config.Default{
		{Key: SettingListen, Value: SettingListenDefault},
		{Key: SettingBusBackend, Value: SettingBusBackendDefault},
		{Key: SettingKafkaBrokers, Value: SettingKafkaBrokersDefault},
		{Key: SettingNatsURI, Value: SettingNatsURIDefault},
		{Key: SettingMongo, Value: SettingMongoDefault},
		{Key: SettingDbName, Value: SettingDbNameDefault},
		{Key: SettingDbSSL, Value: SettingDbSSLDefault},
		{Key: SettingDbSSLSkipVerify, Value: SettingDbSSLSkipVerifyDefault},
		{Key: SettingDebugLog, Value: SettingDebugLogDefault},
		{Key: SettingDeviceManagementURL, Value: SettingDeviceManagementURLDefault},
		{Key: SettingEventStoreURL, Value: SettingEventStoreURLDefault},
		{Key: SettingCommandDeliveryURL, Value: SettingCommandDeliveryURLDefault},
		{Key: SettingAllowNewDevices, Value: SettingAllowNewDevicesDefault},
		{Key: SettingPresenceCheckInterval, Value: SettingPresenceCheckIntervalDefault},
		{Key: SettingPresenceMissingThreshold, Value: SettingPresenceMissingThresholdDefault},
		{Key: SettingPresenceEmitPresent, Value: SettingPresenceEmitPresentDefault},
	}
)
