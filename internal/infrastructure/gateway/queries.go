package gateway

// GraphQL documents for the console endpoint. The server exposes a single
// schema; every read and write below goes through the same path.

const shipmentFields = `
      id
      shipper_name
      shipper_email
      shipper_phone
      carrier_name
      carrier_contact
      pickup_location
      pickup_date
      delivery_location
      delivery_date
      estimated_delivery
      tracking_number
      status
      weight_kg
      dimensions
      cargo_type
      rate_amount
      currency
      priority
      notes
      is_flagged
      flagged_reason
      created_at
      updated_at`

const shipmentsQuery = `
  query Shipments($filter: ShipmentFilterInput, $page: Int, $limit: Int, $sort: SortInput) {
    shipments(filter: $filter, page: $page, limit: $limit, sort: $sort) {
      items {` + shipmentFields + `
      }
      totalCount
      page
      limit
      totalPages
    }
  }`

const shipmentQuery = `
  query Shipment($id: ID!) {
    shipment(id: $id) {` + shipmentFields + `
    }
  }`

const createShipmentMutation = `
  mutation CreateShipment($input: CreateShipmentInput!) {
    createShipment(input: $input) {` + shipmentFields + `
    }
  }`

const updateShipmentMutation = `
  mutation UpdateShipment($id: ID!, $input: UpdateShipmentInput!) {
    updateShipment(id: $id, input: $input) {` + shipmentFields + `
    }
  }`

const deleteShipmentMutation = `
  mutation DeleteShipment($id: ID!) {
    deleteShipment(id: $id)
  }`

const flagShipmentMutation = `
  mutation FlagShipment($id: ID!, $reason: String) {
    flagShipment(id: $id, reason: $reason) {
      id
      is_flagged
      flagged_reason
      tracking_number
      shipper_name
    }
  }`

const unflagShipmentMutation = `
  mutation UnflagShipment($id: ID!) {
    unflagShipment(id: $id) {
      id
      is_flagged
      flagged_reason
      tracking_number
      shipper_name
    }
  }`

const systemStatsQuery = `
  query SystemStats {
    systemStats {
      totalShipments
      pendingShipments
      inTransitShipments
      deliveredShipments
      totalUsers
    }
  }`

const loginMutation = `
  mutation Login($email: String!, $password: String!) {
    login(email: $email, password: $password) {
      token
      user {
        id
        email
        name
        role
      }
    }
  }`

const meQuery = `
  query Me {
    me {
      id
      email
      name
      role
      created_at
    }
  }`

const usersQuery = `
  query Users {
    users {
      id
      email
      name
      role
      created_at
    }
  }`
