// Package config loads bus descriptions for the spibus simulator.
//
// A bus file is YAML:
//
//	limits:
//	  max_dispatchers: 2
//	  max_devices: 5
//	buses:
//	  - name: SPI0
//	    devices:
//	      - name: FLASH
//	        kind: register-file
//	        size: 256
//	      - name: ADC
//	        kind: counter
//	  - name: SPI1
//	    devices: "PAD,CARD"
//	script:
//	  - {op: select, bus: SPI0, device: FLASH}
//	  - {op: transfer, bus: SPI0, data: [0x80, 0x00], expect: [0xFF, 0x00]}
//
// The devices of a bus may be given as a list of mappings or as a legacy
// comma-separated string of names.
package config
