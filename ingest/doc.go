// Package ingest loads YAML ontology documents into a fact store.
//
// A document lists classes, instances with their properties, and
// relations between instances:
//
//	classes:
//	  - name: Product
//	    description: sellable item
//	instances:
//	  - id: MILK_001
//	    class: Product
//	    label: 바나나우유
//	    properties:
//	      - key: price_krw
//	        value: 3000
//	relations:
//	  - source: MILK_001
//	    type: belongs_to
//	    target: CAT_DAIRY
//
// Each retrieval method has its own document under the ontology
// directory; AutoIngest swaps the store contents to the document of one
// method and Watch keeps a store in sync with a file being edited.
package ingest
