// Package manifest loads declarative route manifests and binds them to
// code.
//
// A manifest mirrors router.RouteDef with names in place of functions:
//
//	basePath: /app
//	routes:
//	  - path: ""
//	    component: shell
//	    children:
//	      - path: users/:id
//	        component: user
//	        controller: userController
//	      - path: admin
//	        resolve: adminBundle
//
// Names are looked up in a Registry when the manifest is built into route
// definitions. Manifests are read from local YAML or JSON files or from
// S3 objects addressed as s3://bucket/key.
package manifest
